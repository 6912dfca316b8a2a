package execstate

import (
	"sync"

	"github.com/arborist-dev/cellgraph/op"
)

// mutationGuard tracks which operation ids currently have a dispatched
// function body executing against them (only DispatchFunction enters it),
// so a dispatch targeting a callable whose home operation is mid-dispatch
// can skip rather than block (the "skip-on-contention" policy — see
// DESIGN.md's Open Question decisions). It is a runtime-only concern, not
// part of a state's persistent snapshot, so the same *mutationGuard pointer
// is shared by every State descended from one New() call rather than
// copied on clone.
type mutationGuard struct {
	mu      sync.Mutex
	running map[op.ID]struct{}
}

func newMutationGuard() *mutationGuard {
	return &mutationGuard{running: map[op.ID]struct{}{}}
}

// tryEnter attempts to mark id as running. It reports false without
// blocking if id is already marked.
func (g *mutationGuard) tryEnter(id op.ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[id]; busy {
		return false
	}
	g.running[id] = struct{}{}
	return true
}

func (g *mutationGuard) exit(id op.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, id)
}
