package execgraph

import (
	"fmt"

	"github.com/arborist-dev/cellgraph/execstate"
	"github.com/arborist-dev/cellgraph/op"
)

// MergedHistory is the flattened view of every operation and output visible
// from a given state, walking its ancestor chain back to the root. Where
// two ancestors define the same operation id, the one closer to the
// queried state — i.e. the more recently produced one — wins.
type MergedHistory struct {
	Operations map[op.ID]op.Node
	Outputs    map[op.ID]op.Output
}

// GetMergedStateHistory walks the ancestor chain from id back toward the
// root, merging each ancestor's operations and outputs into one view where
// the most recent definition of any given operation id wins. This lets a
// caller reconstruct "everything known as of this point" without re-running
// every step from the root.
func (g *Graph) GetMergedStateHistory(id execstate.NodeID) (MergedHistory, error) {
	merged := MergedHistory{
		Operations: make(map[op.ID]op.Node),
		Outputs:    make(map[op.ID]op.Output),
	}

	cur := id
	for {
		s, ok := g.GetStateAtID(cur)
		if !ok {
			return MergedHistory{}, fmt.Errorf("execgraph: no state indexed at %s", cur)
		}

		for _, opID := range s.OperationIDs() {
			if _, seen := merged.Operations[opID]; !seen {
				if n, ok := s.Operation(opID); ok {
					merged.Operations[opID] = n
				}
			}
			if _, seen := merged.Outputs[opID]; !seen {
				if out, ok := s.StateGet(opID); ok {
					merged.Outputs[opID] = out
				}
			}
		}

		if s.ID().IsNil() {
			break
		}
		cur = s.ParentID()
	}
	return merged, nil
}
