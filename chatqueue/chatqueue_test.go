package chatqueue

import (
	"testing"

	"github.com/arborist-dev/cellgraph/model"
	"github.com/stretchr/testify/require"
)

func TestQueuePushAdvancesLength(t *testing.T) {
	q := New()
	require.Equal(t, 1, q.Push(model.Message{Role: model.RoleUser, Content: "hi"}))
	require.Equal(t, 2, q.Push(model.Message{Role: model.RoleUser, Content: "again"}))
	require.Equal(t, 2, q.Len())
}

func TestQueueSinceReturnsOnlyNewMessages(t *testing.T) {
	q := New()
	q.Push(model.Message{Role: model.RoleUser, Content: "a"})
	q.Push(model.Message{Role: model.RoleUser, Content: "b"})

	msgs, head := q.Since(0)
	require.Len(t, msgs, 2)
	require.Equal(t, 2, head)

	q.Push(model.Message{Role: model.RoleUser, Content: "c"})
	msgs, head = q.Since(head)
	require.Len(t, msgs, 1)
	require.Equal(t, "c", msgs[0].Content)
	require.Equal(t, 3, head)

	msgs, head = q.Since(head)
	require.Nil(t, msgs)
	require.Equal(t, 3, head)
}
