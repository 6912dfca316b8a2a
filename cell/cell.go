// Package cell defines the wire form of a cell: the source-level unit a
// host hands the engine to compile into an op.Node via an eval.Factory.
package cell

// Kind tags which evaluator variant compiles a Descriptor.
type Kind int

const (
	KindCode Kind = iota
	KindPrompt
	KindEmbedding
	KindTemplate
	KindMemory
	KindWeb
	KindCodegen
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindPrompt:
		return "prompt"
	case KindEmbedding:
		return "embedding"
	case KindTemplate:
		return "template"
	case KindMemory:
		return "memory"
	case KindWeb:
		return "web"
	case KindCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// TextRange locates a cell's source within its backing file, for
// diagnostics and trace spans.
type TextRange struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Descriptor is the wire form of a cell as handed to the engine by a host.
// An eval.Factory compiles a Descriptor into an op.Node.
type Descriptor struct {
	Kind Kind

	// Language names the code/template/codegen dialect (e.g. "python",
	// "javascript"); empty for kinds that don't vary by language.
	Language string

	// Source is the cell's literal body text.
	Source string

	// FunctionInvocation, when non-nil, names the callable this
	// descriptor invokes rather than defines — used when a dispatch
	// re-runs a home operation's body under a specific function name.
	FunctionInvocation *string

	// BackingFile identifies the document the cell was authored in, for
	// diagnostics only; the engine never reads it.
	BackingFile string

	Range TextRange
}

// IsFunctionInvocation reports whether this descriptor names a specific
// callable to invoke rather than defining a fresh operation.
func (d Descriptor) IsFunctionInvocation() bool {
	return d.FunctionInvocation != nil && *d.FunctionInvocation != ""
}
