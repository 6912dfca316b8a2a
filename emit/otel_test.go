package emit

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/arborist-dev/cellgraph/trace"
)

func newRecordingTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, NewOTelEmitter(tp.Tracer("test"))
}

func TestOTelEmitterPairsSpanAndExitIntoOneRecordedSpan(t *testing.T) {
	exporter, emitter := newRecordingTracer(t)

	execID := "exec-1"
	span := trace.NewSpan("s1", nil, 1, "compile_cell", "eval", "web.go", 42, &execID)
	emitter.Emit(span)
	emitter.Emit(trace.Exit("s1"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 recorded span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != "compile_cell" {
		t.Errorf("name = %q, want %q", got.Name, "compile_cell")
	}
	if !got.EndTime.After(got.StartTime) {
		t.Error("span was not ended")
	}

	attrs := map[string]string{}
	for _, kv := range got.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	if attrs["target"] != "eval" {
		t.Errorf("target attribute = %q, want %q", attrs["target"], "eval")
	}
	if attrs["execution_id"] != execID {
		t.Errorf("execution_id attribute = %q, want %q", attrs["execution_id"], execID)
	}
}

func TestOTelEmitterRecordErrorMarksSpanFailed(t *testing.T) {
	exporter, emitter := newRecordingTracer(t)

	emitter.Emit(trace.NewSpan("s1", nil, 1, "run_body", "eval", "web.go", 1, nil))
	emitter.RecordError("s1", errors.New("boom"))
	emitter.Emit(trace.Exit("s1"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 recorded span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status code = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected RecordError to attach an exception event")
	}
}

func TestOTelEmitterRecordErrorOnUnknownIDIsNoOp(t *testing.T) {
	_, emitter := newRecordingTracer(t)
	emitter.RecordError("missing", errors.New("boom"))
}

func TestOTelEmitterFlushIsNoOp(t *testing.T) {
	_, emitter := newRecordingTracer(t)
	if err := emitter.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned %v, want nil", err)
	}
}
