// Package execgraph implements the Execution Graph: the branching DAG of
// execution states produced as cells run. Where execstate.State is a single
// immutable snapshot, Graph is the indexed, concurrently-accessible history
// of every snapshot reached so far, plus the orchestrator that assigns each
// one its place in that history as it is produced.
//
// The orchestrator pattern mirrors the teacher's Frontier[S]: a single
// goroutine owns the mutable index and drains a channel of work in arrival
// order, so callers never contend on a lock for the index itself — they
// only wait on the ack that their particular submission has been recorded.
package execgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/chatqueue"
	"github.com/arborist-dev/cellgraph/eval"
	"github.com/arborist-dev/cellgraph/execerr"
	"github.com/arborist-dev/cellgraph/execstate"
	"github.com/arborist-dev/cellgraph/metrics"
	"github.com/arborist-dev/cellgraph/op"
)

// Graph is the indexed execution graph: every Complete state reached so
// far, addressable by its NodeID, plus the parent/child edges between them.
type Graph struct {
	mu       sync.RWMutex
	nodes    map[execstate.NodeID]execstate.State
	children map[execstate.NodeID][]execstate.NodeID

	sendCh chan execstate.SendPayload
	done   chan struct{}
	wg     sync.WaitGroup

	registry *eval.Registry
	chat     *chatqueue.Queue
	metrics  *metrics.Collector
}

// Option configures optional Graph behavior at construction time.
type Option func(*Graph)

// WithMetrics attaches a metrics.Collector that the Graph reports exec
// queue depth, step latency and naming collisions to. A nil Collector (the default) makes
// every report call a no-op.
func WithMetrics(c *metrics.Collector) Option {
	return func(g *Graph) { g.metrics = c }
}

// New constructs a Graph with a fresh root State and starts its
// orchestrator goroutine. The root State is indexed before New returns.
func New(registry *eval.Registry, opts ...Option) *Graph {
	g := &Graph{
		nodes:    make(map[execstate.NodeID]execstate.State),
		children: make(map[execstate.NodeID][]execstate.NodeID),
		sendCh:   make(chan execstate.SendPayload, 64),
		done:     make(chan struct{}),
		registry: registry,
		chat:     chatqueue.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.wg.Add(1)
	go g.orchestrate()

	root := execstate.New(g.sendCh)
	g.index(root)
	return g
}

// orchestrate is the single goroutine that owns the mutable index. Reading
// SendPayloads off one channel in one goroutine is what gives acks their
// strict arrival-order guarantee: a suspension point is never told "indexed"
// before every submission ahead of it in real time has been.
func (g *Graph) orchestrate() {
	defer g.wg.Done()
	for {
		select {
		case payload, ok := <-g.sendCh:
			if !ok {
				return
			}
			if payload.Evaluation.IsComplete() {
				g.index(payload.Evaluation.State())
			}
			close(payload.Ack)
		case <-g.done:
			return
		}
	}
}

func (g *Graph) index(s execstate.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[s.ID()] = s
	g.children[s.ParentID()] = append(g.children[s.ParentID()], s.ID())
	g.metrics.SetQueueDepth(len(s.ExecQueue()))
}

// Shutdown stops the orchestrator goroutine and waits for it to exit. The
// Graph must not be used afterward.
func (g *Graph) Shutdown() {
	close(g.done)
	g.wg.Wait()
}

// GetStateAtID returns the Complete state indexed under id.
func (g *Graph) GetStateAtID(id execstate.NodeID) (execstate.State, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.nodes[id]
	return s, ok
}

// Children returns the ids of every state directly derived from id.
func (g *Graph) Children(id execstate.NodeID) []execstate.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]execstate.NodeID, len(g.children[id]))
	copy(out, g.children[id])
	return out
}

// StepExecutionWithPreviousState advances the state at id by one Step and
// indexes the result as a new child of id (via progressGraph), so the
// returned Evaluation's State — when Complete — carries a fresh NodeID
// distinct from id rather than aliasing it. If the step produces an
// Executing evaluation (a long-running operation), it blocks on the
// pending channel before progressing the graph, so callers always see a
// terminal result: a Complete one, indexed as a new child, or an Error one,
// which is returned without being indexed.
func (g *Graph) StepExecutionWithPreviousState(ctx context.Context, id execstate.NodeID) (execstate.Evaluation, error) {
	prev, ok := g.GetStateAtID(id)
	if !ok {
		return execstate.Evaluation{}, fmt.Errorf("execgraph: no state indexed at %s", id)
	}
	return g.drive(ctx, prev)
}

// ExternalStepExecution steps a state produced outside the normal
// Step-from-index flow — e.g. one freshly returned by MutateGraph — and
// ensures the result is driven to completion and indexed the same way a
// StepExecutionWithPreviousState result would be.
func (g *Graph) ExternalStepExecution(ctx context.Context, s execstate.State) (execstate.Evaluation, error) {
	return g.drive(ctx, s)
}

func (g *Graph) drive(ctx context.Context, s execstate.State) (execstate.Evaluation, error) {
	start := time.Now()
	result, err := s.Step(ctx)
	if err != nil {
		g.metrics.ObserveStepLatency(time.Since(start), "error")
		return execstate.Evaluation{}, err
	}
	if result.Kind() == execstate.EvalExecuting {
		select {
		case resolved := <-result.Pending():
			g.metrics.ObserveStepLatency(time.Since(start), statusOf(resolved))
			return g.progressResult(ctx, resolved)
		case <-ctx.Done():
			g.metrics.ObserveStepLatency(time.Since(start), "error")
			return execstate.Evaluation{}, ctx.Err()
		}
	}
	g.metrics.ObserveStepLatency(time.Since(start), statusOf(result))
	return g.progressResult(ctx, result)
}

// progressResult indexes a Complete Step result as a new child node (§4.2.1
// progress_graph) before handing it back to the caller; an Error evaluation
// has no state to index and is passed through unchanged.
func (g *Graph) progressResult(ctx context.Context, result execstate.Evaluation) (execstate.Evaluation, error) {
	if !result.IsComplete() {
		return result, nil
	}
	indexed, err := g.progressGraph(ctx, result.State())
	if err != nil {
		return execstate.Evaluation{}, err
	}
	return execstate.CompleteEvaluation(indexed), nil
}

// progressGraph assigns s a fresh NodeID — parented on the id it currently
// carries — and indexes it through the orchestrator, the same publish path
// MutateGraph uses. A stepped state always becomes a distinct graph node;
// Step itself never allocates ids, so without this every ordinary step
// would alias the node it was stepped from instead of branching a child.
func (g *Graph) progressGraph(ctx context.Context, s execstate.State) (execstate.State, error) {
	indexed := s.WithID(execstate.NewNodeID())
	if err := g.publish(ctx, indexed); err != nil {
		return execstate.State{}, err
	}
	return indexed, nil
}

func statusOf(eval execstate.Evaluation) string {
	if eval.IsComplete() {
		return "complete"
	}
	return "error"
}

// MutateGraph compiles a cell against the state at id (via
// execstate.State.UpdateOp, using the Graph's registry) and indexes the
// resulting state, returning it alongside the operation id it was bound to.
func (g *Graph) MutateGraph(ctx context.Context, id execstate.NodeID, home string, c cell.Descriptor, opID *op.ID) (execstate.State, op.ID, error) {
	prev, ok := g.GetStateAtID(id)
	if !ok {
		return execstate.State{}, op.NoID, fmt.Errorf("execgraph: no state indexed at %s", id)
	}
	next, resolvedID, err := prev.UpdateOp(ctx, g.registry, execstate.NodeID(home), c, opID)
	if err != nil {
		var collision *execerr.NamingCollisionError
		if errors.As(err, &collision) {
			g.metrics.IncNamingCollision(collision.Name)
		}
		return execstate.State{}, op.NoID, err
	}
	indexed, err := g.progressGraph(ctx, next)
	if err != nil {
		return execstate.State{}, op.NoID, err
	}
	return indexed, resolvedID, nil
}

// publish sends s through the same suspend channel a dispatch would, so it
// is indexed by the single orchestrator goroutine rather than directly by
// the calling goroutine.
func (g *Graph) publish(ctx context.Context, s execstate.State) error {
	ack := make(chan struct{})
	select {
	case g.sendCh <- execstate.SendPayload{Evaluation: execstate.CompleteEvaluation(s), Ack: ack}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
