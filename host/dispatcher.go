package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/arborist-dev/cellgraph/execgraph"
	"github.com/arborist-dev/cellgraph/execstate"
)

// Dispatcher processes host Messages against a Graph and republishes the
// resulting Events, the way the teacher's engineConfig collects and
// applies functional Options one at a time — here the "options" arrive at
// run time off a channel instead of as constructor arguments.
type Dispatcher struct {
	graph *execgraph.Graph

	mu       sync.Mutex
	head     execstate.NodeID
	playback PlaybackState

	events chan<- Event
}

// DispatcherOption configures a Dispatcher at construction time.
type DispatcherOption func(*Dispatcher)

// WithInitialHead sets the execution head the Dispatcher starts from
// instead of the graph's root.
func WithInitialHead(id execstate.NodeID) DispatcherOption {
	return func(d *Dispatcher) { d.head = id }
}

// NewDispatcher returns a Dispatcher over graph, publishing Events to
// events. events should be buffered or drained promptly; Dispatch blocks
// while sending an Event.
func NewDispatcher(graph *execgraph.Graph, events chan<- Event, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{graph: graph, events: events, playback: PlaybackPaused}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Head returns the Dispatcher's current execution head.
func (d *Dispatcher) Head() execstate.NodeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.head
}

// Dispatch processes one Message, publishing zero or more Events before
// returning.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	switch msg.Kind {
	case MsgStep:
		return d.step(ctx)
	case MsgPlay:
		return d.play(ctx)
	case MsgPause:
		return d.pause(ctx)
	case MsgRevertToState:
		return d.revertToState(ctx, msg.StateID)
	case MsgMutateCell:
		return d.mutateCell(ctx, msg)
	case MsgChatPush:
		return d.chatPush(ctx, msg)
	default:
		return fmt.Errorf("host: unknown message kind %d", msg.Kind)
	}
}

func (d *Dispatcher) step(ctx context.Context) error {
	d.mu.Lock()
	head := d.head
	d.mu.Unlock()

	result, err := d.graph.StepExecutionWithPreviousState(ctx, head)
	if err != nil {
		return err
	}
	if !result.IsComplete() {
		return nil
	}
	next := result.State()

	d.mu.Lock()
	d.head = next.ID()
	d.mu.Unlock()

	return d.publishHeadMoved(ctx, next)
}

func (d *Dispatcher) play(ctx context.Context) error {
	d.mu.Lock()
	d.playback = PlaybackRunning
	d.mu.Unlock()
	if err := d.publish(ctx, Event{Kind: EventPlaybackState, Playback: PlaybackRunning}); err != nil {
		return err
	}

	go d.runUntilQuietOrPaused(ctx)
	return nil
}

// runUntilQuietOrPaused steps repeatedly until the execution queue empties
// twice in a row (full quiescence, per execstate.Step's sweep-and-refill
// semantics) or playback is paused.
func (d *Dispatcher) runUntilQuietOrPaused(ctx context.Context) {
	var lastQueueLen = -1
	for {
		d.mu.Lock()
		running := d.playback == PlaybackRunning
		head := d.head
		d.mu.Unlock()
		if !running {
			return
		}

		before, ok := d.graph.GetStateAtID(head)
		if !ok {
			return
		}
		queueLen := len(before.ExecQueue())
		if queueLen == 0 && lastQueueLen == 0 {
			d.mu.Lock()
			d.playback = PlaybackPaused
			d.mu.Unlock()
			_ = d.publish(ctx, Event{Kind: EventPlaybackState, Playback: PlaybackPaused})
			return
		}
		lastQueueLen = queueLen

		if err := d.step(ctx); err != nil {
			return
		}
	}
}

func (d *Dispatcher) pause(ctx context.Context) error {
	d.mu.Lock()
	d.playback = PlaybackPaused
	d.mu.Unlock()
	return d.publish(ctx, Event{Kind: EventPlaybackState, Playback: PlaybackPaused})
}

func (d *Dispatcher) revertToState(ctx context.Context, id execstate.NodeID) error {
	if _, ok := d.graph.GetStateAtID(id); !ok {
		return fmt.Errorf("host: no state indexed at %s", id)
	}
	d.mu.Lock()
	d.head = id
	d.mu.Unlock()
	return d.publish(ctx, Event{Kind: EventUpdateExecutionHead, Head: id})
}

func (d *Dispatcher) mutateCell(ctx context.Context, msg Message) error {
	d.mu.Lock()
	head := d.head
	d.mu.Unlock()

	next, _, err := d.graph.MutateGraph(ctx, head, msg.Home, msg.Cell, msg.OpID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.head = next.ID()
	d.mu.Unlock()

	if err := d.publish(ctx, Event{Kind: EventExecutionGraphUpdated, StateID: next.ID(), State: next}); err != nil {
		return err
	}
	if err := d.publish(ctx, Event{Kind: EventDefinitionGraphUpdated, StateID: next.ID(), State: next}); err != nil {
		return err
	}
	return d.publishHeadMoved(ctx, next)
}

func (d *Dispatcher) chatPush(ctx context.Context, msg Message) error {
	d.graph.PushMessage(msg.ChatMessage)
	return d.publish(ctx, Event{Kind: EventReceivedChatMessage, ChatMessage: msg.ChatMessage})
}

func (d *Dispatcher) publishHeadMoved(ctx context.Context, next execstate.State) error {
	if err := d.publish(ctx, Event{Kind: EventExecutionStateChange, StateID: next.ID(), State: next}); err != nil {
		return err
	}
	return d.publish(ctx, Event{Kind: EventUpdateExecutionHead, Head: next.ID()})
}

func (d *Dispatcher) publish(ctx context.Context, ev Event) error {
	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
