package execgraph

import (
	"github.com/arborist-dev/cellgraph/chatqueue"
	"github.com/arborist-dev/cellgraph/model"
)

// PushMessage appends msg to the graph's process-wide chat log and returns
// the log's new length. A state later advances its own watermark to this
// value (execstate.State.WithChatQueueHead) once it has acted on the
// message, so replaying a branch never reprocesses chat input twice.
func (g *Graph) PushMessage(msg model.Message) int {
	return g.chat.Push(msg)
}

// ChatSince returns every chat message pushed after head, plus the log's
// current length.
func (g *Graph) ChatSince(head int) ([]model.Message, int) {
	return g.chat.Since(head)
}
