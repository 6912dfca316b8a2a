// Package emit delivers trace.Events to an observability backend. Adapted
// from the teacher's graph/emit package: the same pluggable Emitter
// interface and the same buffered/log/null/otel implementations, retargeted
// from generic workflow events to execution trace spans.
package emit

import (
	"context"

	"github.com/arborist-dev/cellgraph/trace"
)

// Emitter receives trace events from whichever caller holds one. execstate
// and eval do not emit trace events: Step, dispatch suspension points and
// eval.Factory-built operation bodies run without producing any.
//
// Implementations must not block the caller for long and must not panic;
// an emitter that cannot keep up should drop events rather than stall
// execution.
type Emitter interface {
	// Emit sends a single trace event to the configured backend.
	Emit(event trace.Event)

	// EmitBatch sends multiple events in one operation, in order.
	EmitBatch(ctx context.Context, events []trace.Event) error

	// Flush blocks until every buffered event has been sent.
	Flush(ctx context.Context) error
}
