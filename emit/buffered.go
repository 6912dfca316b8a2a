package emit

import (
	"context"
	"sync"

	"github.com/arborist-dev/cellgraph/trace"
)

// BufferedEmitter retains every event in memory, indexed by execution id,
// for development, testing, and post-hoc analysis — the same role the
// teacher's BufferedEmitter plays for workflow events.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]trace.Event // execution id ("" for spans with none; an Exit follows its Span) -> events
}

// NewBufferedEmitter returns an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]trace.Event)}
}

func (b *BufferedEmitter) Emit(event trace.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := ""
	if event.ExecutionID != nil {
		key = *event.ExecutionID
	} else if event.Kind == trace.KindExit {
		// An Exit carries only ID and Weight; file it with the Span it closes.
		for k, recorded := range b.events {
			for _, e := range recorded {
				if e.Kind == trace.KindSpan && e.ID == event.ID {
					key = k
				}
			}
		}
	}
	b.events[key] = append(b.events[key], event)
}

func (b *BufferedEmitter) EmitBatch(_ context.Context, events []trace.Event) error {
	for _, e := range events {
		b.Emit(e)
	}
	return nil
}

func (b *BufferedEmitter) Flush(context.Context) error { return nil }

// History returns every event recorded for the given execution id, in
// emission order.
func (b *BufferedEmitter) History(executionID string) []trace.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]trace.Event, len(b.events[executionID]))
	copy(out, b.events[executionID])
	return out
}

// Clear discards every recorded event for the given execution id.
func (b *BufferedEmitter) Clear(executionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, executionID)
}
