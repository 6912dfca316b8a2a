package execstate

import (
	"github.com/arborist-dev/cellgraph/execerr"
	"github.com/arborist-dev/cellgraph/op"
)

// EvalKind tags which variant an Evaluation holds.
type EvalKind int

const (
	// EvalComplete means State is populated and may be stepped, mutated,
	// or queried.
	EvalComplete EvalKind = iota
	// EvalExecuting means the state is still being produced; Pending
	// will eventually deliver the resolved Evaluation.
	EvalExecuting
	// EvalError means production of the state failed.
	EvalError
)

// Evaluation is the tagged union { Complete(state), Executing(pending),
// Error }. Only Complete evaluations may be stepped or mutated; only
// Complete evaluations may be indexed by get_state_at_id queries without
// blocking.
type Evaluation struct {
	kind    EvalKind
	state   State
	pending <-chan Evaluation
}

// CompleteEvaluation wraps a finished state.
func CompleteEvaluation(s State) Evaluation {
	return Evaluation{kind: EvalComplete, state: s}
}

// ExecutingEvaluation wraps a pending future: a channel that will deliver
// the resolved Evaluation once the in-flight production finishes.
func ExecutingEvaluation(pending <-chan Evaluation) Evaluation {
	return Evaluation{kind: EvalExecuting, pending: pending}
}

// ErrorEvaluation marks a failed production.
func ErrorEvaluation() Evaluation {
	return Evaluation{kind: EvalError}
}

// Kind reports which variant this Evaluation holds.
func (e Evaluation) Kind() EvalKind { return e.kind }

// IsComplete reports whether e holds a Complete state.
func (e Evaluation) IsComplete() bool { return e.kind == EvalComplete }

// State returns the wrapped state. It panics if e is not Complete; callers
// that can't guarantee completeness should check IsComplete or use
// RequireComplete.
func (e Evaluation) State() State {
	if e.kind != EvalComplete {
		execerr.Panic("evaluation-state", "State called on a non-Complete Evaluation")
	}
	return e.state
}

// Pending returns the channel backing an Executing evaluation.
func (e Evaluation) Pending() <-chan Evaluation {
	return e.pending
}

// RequireComplete returns the wrapped state, or execerr.ErrNonComplete if e
// is not Complete. Unlike State, this never panics — it's the surfaced-error
// path for callers driven by external input rather than internal invariant.
func (e Evaluation) RequireComplete() (State, error) {
	if e.kind != EvalComplete {
		return State{}, execerr.ErrNonComplete
	}
	return e.state, nil
}

// StateGet looks up an operation's output in the wrapped Complete state. It
// panics if called on a non-Complete evaluation, mirroring the "unreachable"
// policy for a caller that should have checked completeness first.
func (e Evaluation) StateGet(id op.ID) (op.Output, bool) {
	return e.State().StateGet(id)
}

// SendPayload is the (evaluation, ack) pair a suspension point publishes to
// the orchestrator: the evaluation to index, and a channel to close once
// it has been indexed (or has failed to be).
type SendPayload struct {
	Evaluation Evaluation
	Ack        chan struct{}
}
