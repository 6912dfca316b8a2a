// Package execdag implements the Dependency Graph: a directed multigraph
// keyed by op.ID, where each consuming operation records the set of
// producer operations (and the channel each producer feeds) it depends on.
package execdag

import "github.com/arborist-dev/cellgraph/op"

// RefKind tags which channel a Reference feeds.
type RefKind int

const (
	// Positional feeds the consumer's Nth positional argument.
	Positional RefKind = iota
	// Keyword feeds a named keyword argument.
	Keyword
	// Global feeds a named global value.
	Global
	// FunctionInvocation records that the consumer may call a producer's
	// exposed function by name; it carries no value binding on its own.
	FunctionInvocation
	// Ordering is a pure execution-order dependency carrying no value;
	// it survives dependency-graph rebuilds that otherwise replace a
	// consumer's data-channel edges (see Graph.Apply).
	Ordering
)

func (k RefKind) String() string {
	switch k {
	case Positional:
		return "positional"
	case Keyword:
		return "keyword"
	case Global:
		return "global"
	case FunctionInvocation:
		return "function_invocation"
	case Ordering:
		return "ordering"
	default:
		return "unknown"
	}
}

// Reference describes how one producer feeds one consumer: the channel
// (Kind) and, for Positional/Keyword/Global/FunctionInvocation, the
// position or name within that channel.
type Reference struct {
	Kind     RefKind
	Position int    // meaningful only when Kind == Positional
	Name     string // meaningful for Keyword, Global, FunctionInvocation
}

// Pos builds a Positional reference.
func Pos(i int) Reference { return Reference{Kind: Positional, Position: i} }

// Kw builds a Keyword reference.
func Kw(name string) Reference { return Reference{Kind: Keyword, Name: name} }

// Glob builds a Global reference.
func Glob(name string) Reference { return Reference{Kind: Global, Name: name} }

// Fn builds a FunctionInvocation reference.
func Fn(name string) Reference { return Reference{Kind: FunctionInvocation, Name: name} }

// Order builds an Ordering reference.
func Order() Reference { return Reference{Kind: Ordering} }

// IsDataChannel reports whether this reference feeds a value channel
// (Positional/Keyword/Global/FunctionInvocation) as opposed to being a pure
// Ordering dependency.
func (r Reference) IsDataChannel() bool { return r.Kind != Ordering }

// Edge pairs a producer operation with the reference it feeds a consumer
// through.
type Edge struct {
	Producer op.ID
	Ref      Reference
}
