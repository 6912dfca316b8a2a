package execstate

import (
	"context"
	"sort"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/eval"
	"github.com/arborist-dev/cellgraph/execdag"
	"github.com/arborist-dev/cellgraph/execerr"
	"github.com/arborist-dev/cellgraph/internal/pmap"
	"github.com/arborist-dev/cellgraph/op"
)

// UpdateOp compiles c through registry, upserts the resulting operation
// into s (reusing id if given, else the name-or-fresh-id rule
// UpsertOperation already implements), then reruns dependency inference
// across every operation currently registered: each operation's Globals
// and Functions input channels are wired to whichever other operation
// exposes a matching name in its OutputSignature. A name exposed by more
// than one operation is reported as a NamingCollisionError.
//
// home identifies the execution node the cell belongs to, passed through
// to the eval.Factory as a plain string.
func (s State) UpdateOp(ctx context.Context, registry *eval.Registry, home NodeID, c cell.Descriptor, id *op.ID) (State, op.ID, error) {
	node, err := registry.Compile(ctx, string(home), c)
	if err != nil {
		return State{}, op.NoID, &execerr.EvaluatorError{CellKind: c.Kind.String(), Cause: err}
	}

	opID, next := s.UpsertOperation(node, id)

	rebuilt, err := next.rewireDependencyGraph()
	if err != nil {
		return State{}, op.NoID, err
	}

	return rebuilt, opID, nil
}

// globalProducer pairs an id with the global name it is resolved from.
// Nothing constructs one: the collision check below keys producers by name
// in a plain map.
type globalProducer struct {
	id   op.ID
	name string
}

// rewireDependencyGraph rebuilds the Globals/Functions-derived edges for
// every operation in s, from scratch, based on each operation's currently
// declared OutputSignature. It also rebuilds functionNameToMeta.
func (s State) rewireDependencyGraph() (State, error) {
	globalProducers := map[string]op.ID{}
	functionProducers := map[string]op.ID{}
	functionSigs := map[string]op.FunctionSignature{}

	var collisionErr error
	s.operationByID.Range(func(id op.ID, n op.Node) bool {
		for name := range n.Output.Globals {
			if existing, ok := globalProducers[name]; ok && existing != id {
				collisionErr = &execerr.NamingCollisionError{Name: name}
				return false
			}
			globalProducers[name] = id
		}
		for name, fsig := range n.Output.Functions {
			if existing, ok := functionProducers[name]; ok && existing != id {
				collisionErr = &execerr.NamingCollisionError{Name: name}
				return false
			}
			functionProducers[name] = id
			functionSigs[name] = fsig
		}
		return true
	})
	if collisionErr != nil {
		return State{}, collisionErr
	}

	var mutations []execdag.Mutation
	s.operationByID.Range(func(id op.ID, n op.Node) bool {
		var edges []execdag.Edge
		for name := range n.Input.Globals {
			if producer, ok := globalProducers[name]; ok {
				edges = append(edges, execdag.Edge{Producer: producer, Ref: execdag.Glob(name)})
			}
		}
		for name := range n.Input.Functions {
			if producer, ok := functionProducers[name]; ok {
				edges = append(edges, execdag.Edge{Producer: producer, Ref: execdag.Fn(name)})
			}
		}
		mutations = append(mutations, execdag.CreateMutation(id, edges))
		return true
	})

	next := s.ApplyDependencyGraphMutations(mutations)
	next.functionNameToMeta = rebuildFunctionMeta(functionProducers, functionSigs)
	return next, nil
}

func rebuildFunctionMeta(producers map[string]op.ID, sigs map[string]op.FunctionSignature) pmap.Map[string, FunctionMetadata] {
	meta := pmap.New[string, FunctionMetadata](pmap.StringHash, pmap.StringEq)
	names := make([]string, 0, len(producers))
	for name := range producers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		meta = meta.Set(name, FunctionMetadata{OperationID: producers[name], Input: sigs[name].Input})
	}
	return meta
}
