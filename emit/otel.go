package emit

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/arborist-dev/cellgraph/trace"
)

// OTelEmitter turns a trace.Event Span/Exit pair into a real OpenTelemetry
// span: the Span event starts it and records attributes, the matching Exit
// event ends it, mirroring the teacher's OTelEmitter adapting a flat event
// stream into spans — except here a span genuinely has a start and an end
// to pair, rather than being recorded as an instant.
type OTelEmitter struct {
	tracer oteltrace.Tracer

	mu    sync.Mutex
	spans map[string]oteltrace.Span
}

// NewOTelEmitter returns an OTelEmitter backed by tracer.
func NewOTelEmitter(tracer oteltrace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer, spans: make(map[string]oteltrace.Span)}
}

func (o *OTelEmitter) Emit(event trace.Event) {
	switch event.Kind {
	case trace.KindSpan:
		_, span := o.tracer.Start(context.Background(), event.Name)
		span.SetAttributes(
			attribute.String("target", event.Target),
			attribute.String("location", fmt.Sprintf("%s:%d", event.Location, event.Line)),
		)
		if event.ExecutionID != nil {
			span.SetAttributes(attribute.String("execution_id", *event.ExecutionID))
		}
		o.mu.Lock()
		o.spans[event.ID] = span
		o.mu.Unlock()
	case trace.KindExit:
		o.mu.Lock()
		span, ok := o.spans[event.ID]
		delete(o.spans, event.ID)
		o.mu.Unlock()
		if ok {
			span.End()
		}
	}
}

// RecordError marks the still-open span for id as failed. Callers use this
// instead of folding an error into Emit(Exit(...)) because trace.Exit
// carries no error field — only the emitter needs to know about failures,
// the trace log itself only records that a span closed.
func (o *OTelEmitter) RecordError(id string, err error) {
	o.mu.Lock()
	span, ok := o.spans[id]
	o.mu.Unlock()
	if !ok || err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

func (o *OTelEmitter) EmitBatch(_ context.Context, events []trace.Event) error {
	for _, e := range events {
		o.Emit(e)
	}
	return nil
}

func (o *OTelEmitter) Flush(context.Context) error { return nil }
