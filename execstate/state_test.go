package execstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/execdag"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/policy"
	"github.com/arborist-dev/cellgraph/value"
	"github.com/stretchr/testify/require"
)

func constNode(name string, v value.Value) op.Node {
	return op.Node{
		Name:   &name,
		Input:  op.NewInputSignature(),
		Output: op.NewOutputSignature(),
		Cell:   cell.Descriptor{Kind: cell.KindCode},
		Body: func(_ context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			return op.Ok(v), nil
		},
	}
}

func TestUpsertOperationAllocatesThenReusesByName(t *testing.T) {
	s := New(nil)
	name := "a"
	id1, s := s.UpsertOperation(op.Node{Name: &name, Input: op.NewInputSignature(), Output: op.NewOutputSignature()}, nil)
	id2, _ := s.UpsertOperation(op.Node{Name: &name, Input: op.NewInputSignature(), Output: op.NewOutputSignature()}, nil)
	require.Equal(t, id1, id2, "redefining a named operation must reuse its existing id")
}

func TestStepRunsZeroDepSingletonOnce(t *testing.T) {
	s := New(nil)
	id, s := s.UpsertOperation(constNode("a", value.Int(1)), nil)

	eval, err := s.Step(context.Background())
	require.NoError(t, err)
	require.True(t, eval.IsComplete())
	s = eval.State()

	out, ok := s.StateGet(id)
	require.True(t, ok)
	require.True(t, value.Equal(value.Int(1), out.Value))
	require.True(t, s.CheckIfPreviouslySet(id))
}

func TestStepLinearChainPropagatesGlobal(t *testing.T) {
	s := New(nil)

	producer := constNode("producer", value.Int(41))
	producer.Output.Globals["producer"] = struct{}{}
	producerID, s := s.UpsertOperation(producer, nil)

	consumerSig := op.NewInputSignature()
	consumerSig.Globals["producer"] = op.Param{Required: true}
	consumer := op.Node{
		Input:  consumerSig,
		Output: op.NewOutputSignature(),
		Cell:   cell.Descriptor{Kind: cell.KindCode},
		Body: func(_ context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
			v := payload.Globals["producer"]
			n, _ := v.AsInt()
			return op.Ok(value.Int(n + 1)), nil
		},
	}
	consumerID, s := s.UpsertOperation(consumer, nil)

	s = s.ApplyDependencyGraphMutations([]execdag.Mutation{
		execdag.CreateMutation(consumerID, []execdag.Edge{{Producer: producerID, Ref: execdag.Glob("producer")}}),
	})

	// Step the producer.
	eval, err := s.Step(context.Background())
	require.NoError(t, err)
	s = eval.State()

	// Step the consumer.
	eval, err = s.Step(context.Background())
	require.NoError(t, err)
	s = eval.State()

	out, ok := s.StateGet(consumerID)
	require.True(t, ok)
	n, _ := out.Value.AsInt()
	require.Equal(t, int64(42), n)

	require.Contains(t, s.MarkedForConsumption(), producerID, "consuming a global must mark its producer")
}

func TestQuiescenceSweepClearsConsumedAndRequeues(t *testing.T) {
	s := New(nil)
	id, s := s.UpsertOperation(constNode("a", value.Int(1)), nil)

	eval, err := s.Step(context.Background())
	require.NoError(t, err)
	s = eval.State()
	s = s.MarkForConsumption(id)

	require.Empty(t, s.ExecQueue())
	eval, err = s.Step(context.Background())
	require.NoError(t, err)
	s = eval.State()

	require.Empty(t, s.MarkedForConsumption())
	_, ok := s.StateGet(id)
	require.False(t, ok, "a consumed output must be cleared by the sweep")
	require.Contains(t, s.ExecQueue(), id, "the sweep must requeue every registered operation")
}

func TestDispatchFunctionRunsHomeOperationAndRecordsMaxID(t *testing.T) {
	s := New(nil)

	home := op.Node{
		Output: op.OutputSignature{
			Globals: map[string]struct{}{},
			Functions: map[string]op.FunctionSignature{
				"double": {Input: op.NewInputSignature()},
			},
		},
		Input: op.NewInputSignature(),
		Cell:  cell.Descriptor{Kind: cell.KindCode},
		Body: func(_ context.Context, _ op.Dispatcher, payload op.Payload, fn *string, _ *string) (op.Output, error) {
			require.NotNil(t, fn)
			require.Equal(t, "double", *fn)
			n, _ := payload.Kwargs["n"].AsInt()
			return op.Ok(value.Int(n * 2)), nil
		},
	}
	homeID, s := s.UpsertOperation(home, nil)

	rewired, err := s.rewireDependencyGraph()
	require.NoError(t, err)
	s = rewired

	meta, ok := s.FunctionMetadata("double")
	require.True(t, ok)
	require.Equal(t, homeID, meta.OperationID)

	v, post, err := s.DispatchFunction(context.Background(), "double", op.Payload{
		Kwargs: map[string]value.Value{"n": value.Int(21)},
	}, nil)
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, int64(42), n)

	out, ok := post.StateGet(op.MaxID)
	require.True(t, ok)
	n2, _ := out.Value.AsInt()
	require.Equal(t, int64(42), n2)
}

func TestDispatchFunctionSkipsOnContention(t *testing.T) {
	s := New(nil)
	home := op.Node{
		Output: op.OutputSignature{
			Globals:   map[string]struct{}{},
			Functions: map[string]op.FunctionSignature{"f": {Input: op.NewInputSignature()}},
		},
		Input: op.NewInputSignature(),
		Cell:  cell.Descriptor{Kind: cell.KindCode},
		Body: func(_ context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			return op.Ok(value.Int(1)), nil
		},
	}
	homeID, s := s.UpsertOperation(home, nil)
	s, err := s.rewireDependencyGraph()
	require.NoError(t, err)

	require.True(t, s.guard.tryEnter(homeID))
	v, _, err := s.DispatchFunction(context.Background(), "f", op.Payload{}, nil)
	require.NoError(t, err)
	require.True(t, v.IsNull(), "a busy home operation must be skipped, not run")
}

func TestNamingCollisionIsDetected(t *testing.T) {
	s := New(nil)
	a := op.Node{Output: op.OutputSignature{Globals: map[string]struct{}{"x": {}}, Functions: map[string]op.FunctionSignature{}}, Input: op.NewInputSignature()}
	b := op.Node{Output: op.OutputSignature{Globals: map[string]struct{}{"x": {}}, Functions: map[string]op.FunctionSignature{}}, Input: op.NewInputSignature()}
	_, s = s.UpsertOperation(a, nil)
	_, s = s.UpsertOperation(b, nil)

	_, err := s.rewireDependencyGraph()
	require.Error(t, err)
}

func TestStepChurnsPastUnsatisfiedCandidatesWithinOneCall(t *testing.T) {
	s := New(nil)

	idX, s := s.UpsertOperation(constNode("x", value.Int(1)), nil)
	eval, err := s.Step(context.Background())
	require.NoError(t, err)
	s = eval.State()
	require.True(t, s.CheckIfPreviouslySet(idX))

	// Requeue x (e.g. a redefinition) without replacing its id, so the
	// next Step sees it again as an already-run zero-dep singleton to skip.
	_, s = s.UpsertOperation(constNode("x", value.Int(1)), &idX)

	unsatisfiedSig := op.NewInputSignature()
	unsatisfiedSig.Globals["g"] = op.Param{Required: true}
	_, s = s.UpsertOperation(op.Node{
		Input:  unsatisfiedSig,
		Output: op.NewOutputSignature(),
		Cell:   cell.Descriptor{Kind: cell.KindCode},
		Body: func(_ context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			t.Fatal("unsatisfied candidate must not run")
			return op.Output{}, nil
		},
	}, nil)

	idZ, s := s.UpsertOperation(constNode("z", value.Int(99)), nil)

	// A single Step call must skip x (already set) and the unsatisfied
	// candidate, then run z, rather than stopping at the first skip.
	eval, err = s.Step(context.Background())
	require.NoError(t, err)
	require.True(t, eval.IsComplete())
	s = eval.State()

	out, ok := s.StateGet(idZ)
	require.True(t, ok, "z should have run within the same Step call")
	require.True(t, value.Equal(value.Int(99), out.Value))
	require.Empty(t, s.ExecQueue())
}

func TestStepRetriesLongRunningBodyPerPolicy(t *testing.T) {
	s := New(nil)
	attempts := 0
	node := op.Node{
		Input:       op.NewInputSignature(),
		Output:      op.NewOutputSignature(),
		Cell:        cell.Descriptor{Kind: cell.KindCode},
		LongRunning: true,
		Retry: &policy.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Retryable:   func(error) bool { return true },
		},
		Body: func(_ context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			attempts++
			if attempts < 3 {
				return op.Output{}, errors.New("transient")
			}
			return op.Ok(value.Int(42)), nil
		},
	}
	id, s := s.UpsertOperation(node, nil)

	eval, err := s.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, EvalExecuting, eval.Kind())

	resolved := <-eval.Pending()
	require.True(t, resolved.IsComplete())
	out, ok := resolved.StateGet(id)
	require.True(t, ok)
	require.Equal(t, value.Int(42), out.Value)
	require.Equal(t, 3, attempts, "body should have retried until success")
}
