package op

import (
	"context"

	"github.com/arborist-dev/cellgraph/value"
)

// Payload bundles the channel bindings gathered for one operation body
// invocation: the concrete values bound to each of its input signature's
// four channels.
type Payload struct {
	Args      map[string]value.Value
	Kwargs    map[string]value.Value
	Globals   map[string]value.Value
	Functions map[string]value.Value
}

// NewPayload returns a Payload with all four channels initialized.
func NewPayload() Payload {
	return Payload{
		Args:      map[string]value.Value{},
		Kwargs:    map[string]value.Value{},
		Globals:   map[string]value.Value{},
		Functions: map[string]value.Value{},
	}
}

// StateView is the read-only view of an execution state a body is handed:
// enough to look up another operation's already-produced value without
// granting any mutation access.
type StateView interface {
	StateGetValue(id ID) (value.Value, bool)
}

// Dispatcher is the read-only state reference passed to an operation body.
// Besides the read access of StateView, it lets the body invoke another
// operation's callable function, suspending the caller's step so the
// dispatch's pre- and post-states can be recorded by the orchestrator
// before the body resumes.
type Dispatcher interface {
	StateView

	// Dispatch invokes the named callable with payload bound against its
	// function signature. It returns the callable's result value and the
	// state the callable produced (its "post-state"); the caller's body
	// should typically return that post-state as its own Output's
	// Replacement so the enclosing step adopts whatever the dispatch
	// accumulated.
	Dispatch(ctx context.Context, functionName string, payload Payload, parentTraceID *string) (value.Value, Dispatcher, error)
}

// BodyFunc is an operation's executable body: given a read-only state
// reference, the bound payload, an optional function-invocation name (set
// when this body is running because a dispatch invoked one of its exposed
// functions rather than its default entry point), and an optional parent
// trace id, it produces an Output.
//
// A body must not mutate the state it is handed; any change it wants
// reflected in the enclosing step must come back as the Output's
// Replacement.
type BodyFunc func(ctx context.Context, state Dispatcher, payload Payload, functionInvocation *string, parentTraceID *string) (Output, error)
