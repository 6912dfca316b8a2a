package execdag

import "github.com/arborist-dev/cellgraph/op"

// Mutation describes one change to the dependency graph: either
// (re)declaring a consumer's full set of dependencies, or removing a
// consumer entirely (its operation was deleted from the state).
type Mutation struct {
	// OperationID is the consuming operation this mutation affects.
	OperationID op.ID

	// DependsOn is the consumer's full set of producer edges, used only
	// for a Create mutation; a Create may carry a nil or empty set.
	DependsOn []Edge

	// Delete marks this mutation as removing OperationID's entry
	// entirely rather than replacing it.
	Delete bool
}

// CreateMutation builds a mutation that (re)declares operationID's
// dependencies.
func CreateMutation(operationID op.ID, dependsOn []Edge) Mutation {
	return Mutation{OperationID: operationID, DependsOn: dependsOn}
}

// DeleteMutation builds a mutation that removes operationID's entry.
func DeleteMutation(operationID op.ID) Mutation {
	return Mutation{OperationID: operationID, Delete: true}
}

// Graph is the Dependency Graph: for every consuming operation, the set of
// (producer, reference) edges it depends on. Graph values are treated as
// immutable; Apply returns a new Graph rather than mutating the receiver,
// so a Graph embedded in an execstate.State can be shared freely across
// states that didn't touch the dependency graph.
type Graph struct {
	deps map[op.ID][]Edge
}

// New returns an empty Graph.
func New() Graph {
	return Graph{deps: map[op.ID][]Edge{}}
}

// DependenciesOf returns the edges feeding into consumer, or nil if it has
// none recorded.
func (g Graph) DependenciesOf(consumer op.ID) []Edge {
	return g.deps[consumer]
}

// Operations returns every consumer with a recorded entry, including those
// whose only edges are Ordering and those created with no edges at all.
func (g Graph) Operations() []op.ID {
	out := make([]op.ID, 0, len(g.deps))
	for id := range g.deps {
		out = append(out, id)
	}
	return out
}

// Apply returns a new Graph with every mutation applied in order.
//
// A Create mutation replaces a consumer's data-channel edges
// (Positional/Keyword/Global/FunctionInvocation) with the supplied set, but
// preserves any Ordering edges already recorded for that consumer — pure
// execution-order dependencies are not rediscovered by static analysis on
// every cell redefinition, so a rebuild must not silently drop them.
func (g Graph) Apply(mutations []Mutation) Graph {
	next := make(map[op.ID][]Edge, len(g.deps))
	for id, edges := range g.deps {
		next[id] = edges
	}
	for _, m := range mutations {
		if m.Delete {
			delete(next, m.OperationID)
			continue
		}
		next[m.OperationID] = replaceDataEdges(next[m.OperationID], m.DependsOn)
	}
	return Graph{deps: next}
}

func replaceDataEdges(existing, fresh []Edge) []Edge {
	out := make([]Edge, 0, len(fresh)+len(existing))
	out = append(out, fresh...)
	for _, e := range existing {
		if e.Ref.Kind == Ordering {
			out = append(out, e)
		}
	}
	return out
}
