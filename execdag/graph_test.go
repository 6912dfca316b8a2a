package execdag

import (
	"testing"

	"github.com/arborist-dev/cellgraph/op"
	"github.com/stretchr/testify/require"
)

func TestApplyCreateThenDelete(t *testing.T) {
	g := New()
	g2 := g.Apply([]Mutation{
		CreateMutation(2, []Edge{{Producer: 1, Ref: Pos(0)}}),
	})
	require.Empty(t, g.DependenciesOf(2))
	require.Len(t, g2.DependenciesOf(2), 1)

	g3 := g2.Apply([]Mutation{DeleteMutation(2)})
	require.Empty(t, g3.DependenciesOf(2))
	require.Len(t, g2.DependenciesOf(2), 1, "earlier graph must be unaffected by later Apply")
}

func TestApplyPreservesOrderingEdgesAcrossRebuild(t *testing.T) {
	g := New().Apply([]Mutation{
		CreateMutation(3, []Edge{
			{Producer: 1, Ref: Pos(0)},
			{Producer: 2, Ref: Order()},
		}),
	})
	require.Len(t, g.DependenciesOf(3), 2)

	// A redefinition rebuilds data-channel edges from fresh static
	// analysis but must keep the previously recorded Ordering edge.
	g2 := g.Apply([]Mutation{
		CreateMutation(3, []Edge{{Producer: 1, Ref: Kw("x")}}),
	})
	edges := g2.DependenciesOf(3)
	require.Len(t, edges, 2)

	var sawOrdering, sawKw bool
	for _, e := range edges {
		if e.Ref.Kind == Ordering && e.Producer == op.ID(2) {
			sawOrdering = true
		}
		if e.Ref.Kind == Keyword && e.Ref.Name == "x" {
			sawKw = true
		}
	}
	require.True(t, sawOrdering)
	require.True(t, sawKw)
}

func TestApplyOverwritesDataEdgesOnRepeatedCreate(t *testing.T) {
	g := New().Apply([]Mutation{
		CreateMutation(5, []Edge{{Producer: 1, Ref: Pos(0)}}),
	})
	g2 := g.Apply([]Mutation{
		CreateMutation(5, []Edge{{Producer: 2, Ref: Pos(0)}}),
	})
	edges := g2.DependenciesOf(5)
	require.Len(t, edges, 1)
	require.Equal(t, op.ID(2), edges[0].Producer)
}
