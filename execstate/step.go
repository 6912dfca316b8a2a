package execstate

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/arborist-dev/cellgraph/execdag"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// Step advances s by one unit of scheduling work and returns an Evaluation
// wrapping the result: Complete if an operation ran synchronously or the
// queue churned all the way to a quiescence sweep, Error if a synchronously
// run body returned an error, or Executing if it
// popped a LongRunning operation, whose body now runs on its own goroutine
// and will deliver its Complete (or Error) Evaluation over the returned
// channel.
//
// Step churns the exec queue within a single call: a stale entry (operation
// since replaced or deleted), a zero-dependency singleton that already ran,
// or an operation whose inputs aren't all satisfied yet is skipped in favor
// of the next queue entry, rather than ending the step. Every producer
// consulted along the way — including for skipped candidates — stays marked
// for consumption. Only once a runnable operation is found, or the queue
// empties out, does Step return.
//
// An empty queue triggers the quiescence sweep instead of running an
// operation: every output marked for consumption (accumulated across this
// call's skipped candidates too) is cleared, then every currently
// registered operation is requeued so the graph has a chance to re-settle
// (a fresh global value flowing from one cell's redefinition needs every
// consumer requeued, not just the one cell that changed).
func (s State) Step(ctx context.Context) (Evaluation, error) {
	next := s
	for {
		if len(next.execQueue) == 0 {
			return CompleteEvaluation(next.sweepAndRefill()), nil
		}

		id := next.execQueue[0]
		rest := make([]op.ID, len(next.execQueue)-1)
		copy(rest, next.execQueue[1:])
		next.execQueue = rest

		node, ok := next.Operation(id)
		if !ok {
			// Stale queue entry from a since-replaced/deleted operation.
			continue
		}

		if node.Input.IsEmpty() && next.CheckIfPreviouslySet(id) {
			// Zero-dependency singleton that has already run once.
			continue
		}

		marked, args, kwargs, globals, functions := next.gatherInputs(id)
		next = marked
		if !node.Input.Check(args, kwargs, globals, functions) {
			continue
		}
		node.Input.PrepopulateDefaults(args, kwargs, globals)
		payload := op.Payload{Args: args, Kwargs: kwargs, Globals: globals, Functions: functions}

		if node.LongRunning {
			pending := make(chan Evaluation, 1)
			go func() {
				pending <- runBodyWithPolicy(ctx, next, id, node, payload)
			}()
			return ExecutingEvaluation(pending), nil
		}

		return runBody(ctx, next, id, node, payload), nil
	}
}

// runBodyWithPolicy runs a LongRunning body under its declared Timeout,
// retrying per its Retry policy (if any) before giving up with an Error
// Evaluation.
func runBodyWithPolicy(ctx context.Context, base State, id op.ID, node op.Node, payload op.Payload) Evaluation {
	fnInvocation := node.Cell.FunctionInvocation
	attempt := 0
	for {
		attemptCtx, cancel := node.Timeout.WithTimeout(ctx)
		out, err := node.Body(attemptCtx, dispatchView{state: base}, payload, fnInvocation, nil)
		cancel()

		if err == nil {
			next := base
			if out.Replacement != nil {
				if replaced, ok := out.Replacement.(State); ok {
					next = replaced
				}
			}
			return CompleteEvaluation(next.StateInsert(id, out))
		}

		if node.Retry == nil || !node.Retry.ShouldRetry(attempt, err) {
			return ErrorEvaluation()
		}

		select {
		case <-time.After(node.Retry.Backoff(attempt)):
		case <-ctx.Done():
			return ErrorEvaluation()
		}
		attempt++
	}
}

// gatherInputs collects the bound payload for id from the outputs of its
// dependency-graph producers, returning a copy of s with every producer
// actually consulted marked for consumption.
func (s State) gatherInputs(id op.ID) (next State, args, kwargs, globals, functions map[string]value.Value) {
	next = s
	args = map[string]value.Value{}
	kwargs = map[string]value.Value{}
	globals = map[string]value.Value{}
	functions = map[string]value.Value{}

	edges := s.DependencyGraph().DependenciesOf(id)
	for _, edge := range edges {
		if edge.Ref.Kind == execdag.Ordering {
			continue
		}
		v, has := s.StateGetValue(edge.Producer)
		switch edge.Ref.Kind {
		case execdag.Positional:
			if !has {
				continue
			}
			args[strconv.Itoa(edge.Ref.Position)] = v
		case execdag.Keyword:
			if !has {
				continue
			}
			kwargs[edge.Ref.Name] = v
		case execdag.Global:
			if !has {
				continue
			}
			globals[edge.Ref.Name] = v
		case execdag.FunctionInvocation:
			// A function-invocation edge enables a later Dispatch call
			// rather than binding a produced value; it is always
			// considered satisfied once the producer operation exists.
			functions[edge.Ref.Name] = value.Cell(value.CellRef{OperationName: edge.Ref.Name, HomeID: int(edge.Producer)})
			continue
		}
		next = next.MarkForConsumption(edge.Producer)
	}
	return next, args, kwargs, globals, functions
}

// runBody invokes node's body against payload and folds the result back
// into base, producing the Complete (or Error) Evaluation for one step.
func runBody(ctx context.Context, base State, id op.ID, node op.Node, payload op.Payload) Evaluation {
	fnInvocation := node.Cell.FunctionInvocation

	out, err := node.Body(ctx, dispatchView{state: base}, payload, fnInvocation, nil)
	if err != nil {
		return ErrorEvaluation()
	}

	next := base
	if out.Replacement != nil {
		if replaced, ok := out.Replacement.(State); ok {
			next = replaced
		}
	}
	next = next.StateInsert(id, out)
	return CompleteEvaluation(next)
}

// sweepAndRefill clears every output marked for consumption and requeues
// every currently registered operation, in deterministic (id-sorted)
// order.
func (s State) sweepAndRefill() State {
	next := s.StateConsumeMarked()
	ids := next.operationByID.Keys()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	next.execQueue = ids
	return next
}
