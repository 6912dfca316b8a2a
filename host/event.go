package host

import (
	"github.com/arborist-dev/cellgraph/execstate"
	"github.com/arborist-dev/cellgraph/model"
)

// EventKind tags which variant an Event holds.
type EventKind int

const (
	// EventExecutionGraphUpdated reports that a new state was indexed into
	// the execution graph.
	EventExecutionGraphUpdated EventKind = iota
	// EventStateAtID answers a (future) point query for a specific state.
	EventStateAtID
	// EventExecutionStateChange reports the execution head moved.
	EventExecutionStateChange
	// EventDefinitionGraphUpdated reports the dependency graph changed
	// shape (an operation's globals/functions wiring was rewired).
	EventDefinitionGraphUpdated
	// EventEditorCellsUpdated reports the set of compiled cells changed.
	EventEditorCellsUpdated
	// EventUpdateExecutionHead reports the execution head's id, sent
	// alongside EventExecutionStateChange so a host can address it
	// directly without re-deriving it from the state.
	EventUpdateExecutionHead
	// EventPlaybackState reports Play/Pause transitions.
	EventPlaybackState
	// EventExecutionStateCellsViewUpdated reports the per-cell view
	// (compiled cell + latest output) for the current head changed.
	EventExecutionStateCellsViewUpdated
	// EventReceivedChatMessage echoes a chat message pushed via
	// MsgChatPush back to every host observer.
	EventReceivedChatMessage
)

// PlaybackState mirrors the original debugger's three-state playback
// control: Paused (idle), Step (a single step in flight), Running
// (continuous stepping until quiescence or a pause).
type PlaybackState int

const (
	PlaybackPaused PlaybackState = iota
	PlaybackStep
	PlaybackRunning
)

// Event is the engine→host sum type.
type Event struct {
	Kind EventKind

	StateID execstate.NodeID
	State   execstate.State

	Head execstate.NodeID

	Playback PlaybackState

	ChatMessage model.Message
}
