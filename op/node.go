package op

import (
	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/policy"
)

// Node is a compiled operation: a named (or anonymous) unit of work with a
// declared input/output signature, the cell descriptor it was compiled
// from, the body that executes it, and whether it runs on its own
// goroutine rather than inline during a step.
type Node struct {
	// Name, if set, is the binding this operation exposes itself under
	// (e.g. so other cells can reference it by name in the dependency
	// graph). Anonymous operations leave this nil.
	Name *string

	Input  InputSignature
	Output OutputSignature
	Cell   cell.Descriptor
	Body   BodyFunc

	// LongRunning marks an operation whose body should not block the
	// step loop; the execution graph runs it on its own goroutine and
	// reports completion asynchronously.
	LongRunning bool

	// Timeout bounds how long a single attempt of a LongRunning body may
	// run. Ignored for inline (non-LongRunning) operations. The zero
	// value means unlimited.
	Timeout policy.Timeout

	// Retry configures automatic retry of a failed LongRunning body. Nil
	// means no retries: the first failure is final.
	Retry *policy.RetryPolicy
}

// NamedAs reports whether the node is bound to the given name.
func (n Node) NamedAs(name string) bool {
	return n.Name != nil && *n.Name == name
}
