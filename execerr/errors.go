// Package execerr defines the error kinds shared by execstate and execgraph.
package execerr

import (
	"errors"
	"fmt"
)

// Sentinel errors a caller can match with errors.Is. Each corresponds to one
// of the non-fatal, surface-to-caller error kinds the engine reports.
var (
	// ErrNonComplete is returned when an operation requires a Complete
	// Evaluation but received Executing or Error.
	ErrNonComplete = errors.New("execerr: state is not Complete")

	// ErrOrchestratorClosed is returned when dispatch's suspension point
	// cannot deliver its ack because the orchestrator has shut down.
	ErrOrchestratorClosed = errors.New("execerr: orchestrator closed")

	// ErrInvalidRetryPolicy mirrors the teacher's policy validation error,
	// reused for NodePolicy-equivalent long-running-operation retry config.
	ErrInvalidRetryPolicy = errors.New("execerr: invalid retry policy")
)

// UnknownStateError reports that a referenced execution node id is not
// present in the execution graph.
type UnknownStateError struct {
	ID string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("execerr: unknown execution state %q", e.ID)
}

// NamingCollisionError reports that two operations export the same global
// or function name.
type NamingCollisionError struct {
	Name string
}

func (e *NamingCollisionError) Error() string {
	return fmt.Sprintf("execerr: naming collision for %q", e.Name)
}

// BodyError wraps an operation body's returned error so it can be recorded
// into the Output's value as an error variant without halting the step.
type BodyError struct {
	OperationName string
	Cause         error
}

func (e *BodyError) Error() string {
	if e.OperationName != "" {
		return fmt.Sprintf("execerr: operation %q failed: %v", e.OperationName, e.Cause)
	}
	return fmt.Sprintf("execerr: operation failed: %v", e.Cause)
}

func (e *BodyError) Unwrap() error { return e.Cause }

// EvaluatorError reports that static analysis or cell compilation failed
// inside an eval.Factory.
type EvaluatorError struct {
	CellKind string
	Cause    error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("execerr: evaluator for %q failed: %v", e.CellKind, e.Cause)
}

func (e *EvaluatorError) Unwrap() error { return e.Cause }

// InvariantViolation marks an internal consistency failure that the engine
// never expects a well-formed caller to trigger. These are fatal: the
// engine panics rather than returning an error, so a caller cannot
// accidentally swallow state corruption.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("execerr: invariant %s violated: %s", e.Invariant, e.Detail)
}

// Panic raises an InvariantViolation. Call sites that detect an impossible
// internal state (e.g. an id indexed in state but absent from
// operation_by_id) call this instead of returning an error.
func Panic(invariant, detail string) {
	panic(&InvariantViolation{Invariant: invariant, Detail: detail})
}
