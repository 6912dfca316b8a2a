// Package execstate implements the Execution State: an immutable,
// structurally-shared snapshot of an execution graph's operations, their
// dependency graph, per-operation outputs, scheduling queue, and
// consumption set.
package execstate

import (
	"github.com/arborist-dev/cellgraph/execdag"
	"github.com/arborist-dev/cellgraph/internal/pmap"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// FunctionMetadata records where a callable function lives and what it
// expects, derived from every operation's output signature.
type FunctionMetadata struct {
	OperationID op.ID
	Input       op.InputSignature
}

// State is the Execution State: immutable once constructed. Every mutator
// method returns a new State rather than modifying the receiver; because
// every field is itself a persistent, structurally-shared collection (or a
// small value/pointer), copying a State is O(1) regardless of how much data
// it indexes.
type State struct {
	id       NodeID
	parentID NodeID

	opCounter op.ID

	operationByID      pmap.Map[op.ID, op.Node]
	operationNameToID  pmap.Map[string, op.ID]
	dependencyGraph    execdag.Graph
	functionNameToMeta pmap.Map[string, FunctionMetadata]

	state       pmap.Map[op.ID, op.Output]
	hasBeenSet  pmap.Set[op.ID]
	freshValues pmap.Set[op.ID]

	execQueue []op.ID

	markedForConsumption pmap.Set[op.ID]

	evaluatingID   *op.ID
	evaluatingName *string
	evaluatingFn   *string

	chatQueueHead int

	sender chan<- SendPayload
	guard  *mutationGuard
}

// New returns a fresh, empty root State. sender may be nil when the state
// is used standalone (outside any execgraph.Graph, e.g. in unit tests);
// dispatch calls against a nil sender skip the orchestrator-suspension
// steps and complete without publishing intermediate snapshots.
func New(sender chan<- SendPayload) State {
	return State{
		id:                 NilNodeID,
		parentID:           NilNodeID,
		operationByID:      pmap.New[op.ID, op.Node](op.Hash, op.Eq),
		operationNameToID:  pmap.New[string, op.ID](pmap.StringHash, pmap.StringEq),
		dependencyGraph:    execdag.New(),
		functionNameToMeta: pmap.New[string, FunctionMetadata](pmap.StringHash, pmap.StringEq),
		state:              pmap.New[op.ID, op.Output](op.Hash, op.Eq),
		hasBeenSet:         pmap.NewSet[op.ID](op.Hash, op.Eq),
		freshValues:        pmap.NewSet[op.ID](op.Hash, op.Eq),
		markedForConsumption: pmap.NewSet[op.ID](op.Hash, op.Eq),
		sender:             sender,
		guard:              newMutationGuard(),
	}
}

// ID returns this state's Execution Node Id.
func (s State) ID() NodeID { return s.id }

// ParentID returns the id of the state this one was derived from, or
// NilNodeID for the root.
func (s State) ParentID() NodeID { return s.parentID }

// WithID returns a copy of s addressed under a fresh node id, with parentID
// set to s's previous id. Used whenever a new node is about to be indexed
// into an execgraph.Graph (a plain field clone does not itself allocate a
// new id — callers decide when a state becomes a distinct graph node).
func (s State) WithID(id NodeID) State {
	next := s
	next.parentID = s.id
	next.id = id
	return next
}

// OperationCount returns how many operations are currently registered.
func (s State) OperationCount() int { return s.operationByID.Len() }

// Operation looks up a compiled operation by id.
func (s State) Operation(id op.ID) (op.Node, bool) {
	return s.operationByID.Get(id)
}

// OperationIDByName resolves a name to the id it is currently bound to.
func (s State) OperationIDByName(name string) (op.ID, bool) {
	return s.operationNameToID.Get(name)
}

// OperationIDs returns every operation id currently registered, in no
// particular order.
func (s State) OperationIDs() []op.ID {
	return s.operationByID.Keys()
}

// DependencyGraph returns the dependency graph backing this state.
func (s State) DependencyGraph() execdag.Graph { return s.dependencyGraph }

// ExecQueue returns a copy of the current scheduling queue, in pop order.
func (s State) ExecQueue() []op.ID {
	out := make([]op.ID, len(s.execQueue))
	copy(out, s.execQueue)
	return out
}

// ChatQueueHead returns how many chat-queue messages this state has
// observed.
func (s State) ChatQueueHead() int { return s.chatQueueHead }

// WithChatQueueHead returns a copy of s with its chat watermark advanced.
func (s State) WithChatQueueHead(head int) State {
	next := s
	next.chatQueueHead = head
	return next
}

// Evaluating returns the trace annotations for the operation currently
// in flight, if any.
func (s State) Evaluating() (id *op.ID, name *string, fn *string) {
	return s.evaluatingID, s.evaluatingName, s.evaluatingFn
}

// FunctionMetadata looks up a callable by name.
func (s State) FunctionMetadata(name string) (FunctionMetadata, bool) {
	return s.functionNameToMeta.Get(name)
}

// UpsertOperation adds or replaces an operation.
//
// If id is non-nil, the operation at that id is replaced in place. Else if
// n.Name is set and already bound to an id, that id is reused (redefining
// the operation in place rather than allocating a new one). Otherwise a
// fresh id is allocated from the state's counter. The id is pushed onto the
// exec queue in every case so the (re)defined operation is considered on
// the engine's next steps.
func (s State) UpsertOperation(n op.Node, id *op.ID) (op.ID, State) {
	next := s

	var opID op.ID
	switch {
	case id != nil:
		opID = *id
	case n.Name != nil:
		if existing, ok := s.operationNameToID.Get(*n.Name); ok {
			opID = existing
		} else {
			opID = s.opCounter
			next.opCounter = s.opCounter + 1
		}
	default:
		opID = s.opCounter
		next.opCounter = s.opCounter + 1
	}

	next.operationByID = next.operationByID.Set(opID, n)
	if n.Name != nil {
		next.operationNameToID = next.operationNameToID.Set(*n.Name, opID)
	}
	next.execQueue = append(copyQueue(s.execQueue), opID)

	return opID, next
}

func copyQueue(q []op.ID) []op.ID {
	out := make([]op.ID, len(q))
	copy(out, q)
	return out
}

// ApplyDependencyGraphMutations rebuilds parts of the dependency graph.
func (s State) ApplyDependencyGraphMutations(mutations []execdag.Mutation) State {
	next := s
	next.dependencyGraph = s.dependencyGraph.Apply(mutations)
	return next
}

// StateInsert records out as the output of id, marking id as having been
// set and as freshly written in the transition producing the returned
// state.
func (s State) StateInsert(id op.ID, out op.Output) State {
	next := s
	next.state = s.state.Set(id, out)
	next.hasBeenSet = s.hasBeenSet.Add(id)
	next.freshValues = pmap.NewSet[op.ID](op.Hash, op.Eq).Add(id)
	return next
}

// StateGet returns the recorded output for id, if any.
func (s State) StateGet(id op.ID) (op.Output, bool) {
	return s.state.Get(id)
}

// StateGetValue is a convenience wrapper returning just the value half of
// StateGet, satisfying op.StateView so operation bodies can read other
// operations' outputs without a mutation handle.
func (s State) StateGetValue(id op.ID) (value.Value, bool) {
	out, ok := s.state.Get(id)
	if !ok {
		return value.Value{}, false
	}
	return out.Value, true
}

// CheckIfPreviouslySet reports whether id has ever held a value in this
// state's lineage.
func (s State) CheckIfPreviouslySet(id op.ID) bool {
	return s.hasBeenSet.Has(id)
}

// MarkForConsumption returns a copy of s with id added to the set of
// outputs that will be cleared on the next quiescence sweep.
func (s State) MarkForConsumption(id op.ID) State {
	next := s
	next.markedForConsumption = s.markedForConsumption.Add(id)
	return next
}

// MarkedForConsumption reports the ids currently marked for clearing at the
// next quiescence sweep.
func (s State) MarkedForConsumption() []op.ID {
	return s.markedForConsumption.Keys()
}

// StateConsumeMarked returns a copy of s with every output currently marked
// for consumption removed from state, and the marked set cleared.
func (s State) StateConsumeMarked() State {
	next := s
	s.markedForConsumption.Range(func(id op.ID, _ struct{}) bool {
		next.state = next.state.Delete(id)
		return true
	})
	next.markedForConsumption = pmap.NewSet[op.ID](op.Hash, op.Eq)
	return next
}
