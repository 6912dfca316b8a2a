package op

import "github.com/arborist-dev/cellgraph/value"

// Output is the result of running one operation: its value (or recorded
// error), whatever it wrote to stdout/stderr during execution, and an
// optional replacement state.
//
// Replacement is typed as `any` rather than a concrete execstate.State to
// avoid a package cycle (execstate imports op for Node/Output, not the
// reverse); execstate type-asserts it back to its own State when adopting
// a body's accumulated changes.
type Output struct {
	Value value.Value
	Err   error

	Stdout []string
	Stderr []string

	Replacement any
}

// Ok constructs a successful Output carrying just a value.
func Ok(v value.Value) Output {
	return Output{Value: v}
}

// Failed constructs an Output recording a body error. The value is set to
// value.Err(err) so a consumer reading Output.Value without checking Err
// still observes the failure.
func Failed(err error) Output {
	return Output{Value: value.Err(err), Err: err}
}

// IsError reports whether this Output represents a failed body.
func (o Output) IsError() bool {
	return o.Err != nil
}

// WithReplacement returns a copy of o with Replacement set, used by bodies
// that dispatched and want the enclosing step to adopt the resulting
// post-state.
func (o Output) WithReplacement(state any) Output {
	o.Replacement = state
	return o
}
