package host

import (
	"context"
	"testing"
	"time"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/eval"
	"github.com/arborist-dev/cellgraph/execgraph"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/store"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, chan Event) {
	t.Helper()
	g := execgraph.New(eval.Default(eval.Deps{Memory: store.NewMemStore()}))
	t.Cleanup(g.Shutdown)
	events := make(chan Event, 32)
	return NewDispatcher(g, events), events
}

func TestDispatchMutateCellMovesHeadAndPublishesEvents(t *testing.T) {
	d, events := newTestDispatcher(t)
	ctx := context.Background()

	err := d.Dispatch(ctx, MutateCell("cell-a", cell.Descriptor{Kind: cell.KindCode, Source: "2 + 2"}, nil))
	require.NoError(t, err)
	require.NotEmpty(t, d.Head())

	var kinds []EventKind
	for i := 0; i < 4; i++ {
		select {
		case ev := <-events:
			kinds = append(kinds, ev.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	require.Contains(t, kinds, EventExecutionGraphUpdated)
	require.Contains(t, kinds, EventUpdateExecutionHead)
}

func TestDispatchStepRunsOperationAtHead(t *testing.T) {
	d, events := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, MutateCell("cell-a", cell.Descriptor{Kind: cell.KindCode, Source: "10"}, nil)))
	drain(t, events, 4)

	require.NoError(t, d.Dispatch(ctx, Step()))
	ev := drain(t, events, 2)
	require.Contains(t, []EventKind{EventExecutionStateChange, EventUpdateExecutionHead}, ev[0].Kind)
}

func TestDispatchChatPushPublishesReceivedChatMessage(t *testing.T) {
	d, events := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, ChatPush(model.Message{Role: model.RoleUser, Content: "hi"})))
	ev := drain(t, events, 1)[0]
	require.Equal(t, EventReceivedChatMessage, ev.Kind)
	require.Equal(t, "hi", ev.ChatMessage.Content)
}

func TestDispatchRevertToStateRejectsUnknownID(t *testing.T) {
	d, _ := newTestDispatcher(t)
	err := d.Dispatch(context.Background(), RevertToState("does-not-exist"))
	require.Error(t, err)
}

func drain(t *testing.T, events chan Event, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case ev := <-events:
			out = append(out, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d/%d", i+1, n)
		}
	}
	return out
}
