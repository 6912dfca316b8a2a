// Package host implements the engine's host-facing protocol: the
// host→engine Message sum type a caller drives playback and mutation with,
// and the engine→host Event sum type the engine republishes in response,
// dispatched by a Dispatcher grounded on the teacher's functional-options
// engine-configuration pattern.
package host

import (
	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/execstate"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/op"
)

// MessageKind tags which variant a Message holds.
type MessageKind int

const (
	// MsgStep advances the execution head by one Step.
	MsgStep MessageKind = iota
	// MsgPlay starts continuous stepping until the queue quiesces or a
	// MsgPause is received.
	MsgPlay
	// MsgPause stops continuous stepping started by MsgPlay.
	MsgPause
	// MsgRevertToState moves the execution head to a previously indexed
	// state without producing a new one.
	MsgRevertToState
	// MsgMutateCell compiles and upserts a cell against the current head.
	MsgMutateCell
	// MsgChatPush appends a message to the process-wide chat log.
	MsgChatPush
)

// Message is the host→engine sum type.
type Message struct {
	Kind MessageKind

	// StateID targets MsgRevertToState.
	StateID execstate.NodeID

	// Home, Cell, and OpID target MsgMutateCell.
	Home string
	Cell cell.Descriptor
	OpID *op.ID

	// ChatMessage targets MsgChatPush.
	ChatMessage model.Message
}

// Step builds a MsgStep message.
func Step() Message { return Message{Kind: MsgStep} }

// Play builds a MsgPlay message.
func Play() Message { return Message{Kind: MsgPlay} }

// Pause builds a MsgPause message.
func Pause() Message { return Message{Kind: MsgPause} }

// RevertToState builds a MsgRevertToState message.
func RevertToState(id execstate.NodeID) Message {
	return Message{Kind: MsgRevertToState, StateID: id}
}

// MutateCell builds a MsgMutateCell message.
func MutateCell(home string, c cell.Descriptor, id *op.ID) Message {
	return Message{Kind: MsgMutateCell, Home: home, Cell: c, OpID: id}
}

// ChatPush builds a MsgChatPush message.
func ChatPush(msg model.Message) Message {
	return Message{Kind: MsgChatPush, ChatMessage: msg}
}
