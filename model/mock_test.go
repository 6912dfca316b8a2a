package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockChatReturnsOutsInOrder(t *testing.T) {
	m := NewMock(ChatOut{Text: "first"}, ChatOut{Text: "second"})
	ctx := context.Background()

	out, err := m.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "first", out.Text)

	out, err = m.Chat(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "second", out.Text)

	require.Len(t, m.Received, 2)
}

func TestMockEmbedReturnsConfiguredVectors(t *testing.T) {
	m := &Mock{Vectors: [][]float64{{1, 2, 3}}}
	out, err := m.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, out[0])
	require.Equal(t, []float64{}, out[1])
}
