package emit

import (
	"context"

	"github.com/arborist-dev/cellgraph/trace"
)

// NullEmitter discards every event. Use it to disable trace emission
// without changing call sites.
type NullEmitter struct{}

// NewNullEmitter returns a NullEmitter.
func NewNullEmitter() *NullEmitter { return &NullEmitter{} }

func (n *NullEmitter) Emit(trace.Event) {}

func (n *NullEmitter) EmitBatch(context.Context, []trace.Event) error { return nil }

func (n *NullEmitter) Flush(context.Context) error { return nil }
