package execstate

import (
	"context"

	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// dispatchView adapts a concrete State to the op.Dispatcher interface a
// body is handed, so bodies never see execstate.State directly (avoiding
// the op<->execstate import cycle op.Output.Replacement's doc comment
// already describes).
type dispatchView struct {
	state State
}

func (d dispatchView) StateGetValue(id op.ID) (value.Value, bool) {
	return d.state.StateGetValue(id)
}

func (d dispatchView) Dispatch(ctx context.Context, functionName string, payload op.Payload, parentTraceID *string) (value.Value, op.Dispatcher, error) {
	v, next, err := d.state.DispatchFunction(ctx, functionName, payload, parentTraceID)
	if err != nil {
		return value.Value{}, nil, err
	}
	return v, dispatchView{state: next}, nil
}

// suspend publishes pending to the orchestrator via s.sender and blocks
// until it has been indexed (the ack channel closes). A nil sender (a
// State used standalone, outside any orchestrator) makes this a no-op, so
// unit tests can drive Step/Dispatch without wiring a consumer.
func (s State) suspend(ctx context.Context, pending Evaluation) error {
	if s.sender == nil {
		return nil
	}
	ack := make(chan struct{})
	select {
	case s.sender <- SendPayload{Evaluation: pending, Ack: ack}:
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

// DispatchFunction invokes the named callable exposed by some operation's
// OutputSignature, passing payload bound against its FunctionSignature's
// input. It implements the cross-cell dispatch procedure: clone to a
// pre-state and suspend (publishing the snapshot before the callable
// runs), execute the home operation's body under the function-invocation
// flag, clone to a post-state with the call's result recorded under the
// op.MaxID sentinel, suspend again, then return the result alongside the
// post-state.
//
// If the home operation is already running a dispatched function (another
// DispatchFunction call has it marked busy in the mutation guard; Step and
// UpdateOp never mark it), DispatchFunction skips the call
// entirely and returns a Null value with the pre-state unchanged — the
// "skip-on-contention" policy recorded in DESIGN.md.
func (s State) DispatchFunction(ctx context.Context, functionName string, payload op.Payload, parentTraceID *string) (value.Value, State, error) {
	meta, ok := s.FunctionMetadata(functionName)
	if !ok {
		return value.Value{}, s, &unknownFunctionError{Name: functionName}
	}

	preState := s.WithID(NewNodeID())
	if err := preState.suspend(ctx, CompleteEvaluation(preState)); err != nil {
		return value.Value{}, s, err
	}

	if !preState.guard.tryEnter(meta.OperationID) {
		return value.Null(), preState, nil
	}
	defer preState.guard.exit(meta.OperationID)

	node, ok := preState.Operation(meta.OperationID)
	if !ok {
		return value.Value{}, preState, &unknownFunctionError{Name: functionName}
	}

	args, kwargs, globals := payload.Args, payload.Kwargs, payload.Globals
	if args == nil {
		args = map[string]value.Value{}
	}
	if kwargs == nil {
		kwargs = map[string]value.Value{}
	}
	if globals == nil {
		globals = map[string]value.Value{}
	}
	meta.Input.PrepopulateDefaults(args, kwargs, globals)
	bound := op.Payload{Args: args, Kwargs: kwargs, Globals: globals, Functions: payload.Functions}

	out, err := node.Body(ctx, dispatchView{state: preState}, bound, &functionName, parentTraceID)
	if err != nil {
		return value.Value{}, preState, err
	}

	postBase := preState
	if out.Replacement != nil {
		if replaced, ok := out.Replacement.(State); ok {
			postBase = replaced
		}
	}
	postBase = postBase.StateInsert(op.MaxID, out)
	postState := postBase.WithID(NewNodeID())
	if err := postState.suspend(ctx, CompleteEvaluation(postState)); err != nil {
		return value.Value{}, postState, err
	}

	return out.Value, postState, nil
}

// unknownFunctionError reports a dispatch naming a callable no operation
// currently exposes.
type unknownFunctionError struct {
	Name string
}

func (e *unknownFunctionError) Error() string {
	return "execstate: no operation exposes function " + e.Name
}
