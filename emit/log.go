package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arborist-dev/cellgraph/trace"
)

// LogEmitter writes trace events to a writer, either as human-readable text
// or as JSON lines, mirroring the teacher's LogEmitter's two output modes.
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter returns a LogEmitter writing to writer (os.Stdout if nil).
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(event trace.Event) {
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event trace.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal trace event: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event trace.Event) {
	kind := "span"
	if event.Kind == trace.KindExit {
		kind = "exit"
	}
	_, _ = fmt.Fprintf(l.writer, "[%s] id=%s weight=%d name=%s", kind, event.ID, event.Weight, event.Name)
	if event.ParentID != nil {
		_, _ = fmt.Fprintf(l.writer, " parent=%s", *event.ParentID)
	}
	if event.ExecutionID != nil {
		_, _ = fmt.Fprintf(l.writer, " execution=%s", *event.ExecutionID)
	}
	_, _ = fmt.Fprint(l.writer, "\n")
}

func (l *LogEmitter) EmitBatch(_ context.Context, events []trace.Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

func (l *LogEmitter) Flush(context.Context) error { return nil }
