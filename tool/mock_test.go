package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockToolReturnsConfiguredError(t *testing.T) {
	m := &MockTool{ToolName: "fail", Err: errors.New("boom")}
	_, err := m.Call(context.Background(), nil)
	require.ErrorContains(t, err, "boom")
}

func TestMockToolRepeatsLastResponseOnceExhausted(t *testing.T) {
	m := &MockTool{ToolName: "seq", Responses: []map[string]interface{}{
		{"n": 1}, {"n": 2},
	}}
	r1, _ := m.Call(context.Background(), nil)
	r2, _ := m.Call(context.Background(), nil)
	r3, _ := m.Call(context.Background(), nil)
	require.Equal(t, map[string]interface{}{"n": 1}, r1)
	require.Equal(t, map[string]interface{}{"n": 2}, r2)
	require.Equal(t, map[string]interface{}{"n": 2}, r3, "last response should repeat")
}

func TestMockToolResetClearsHistory(t *testing.T) {
	m := &MockTool{ToolName: "seq", Responses: []map[string]interface{}{{"n": 1}}}
	_, _ = m.Call(context.Background(), map[string]interface{}{"a": 1})
	require.Equal(t, 1, m.CallCount())

	m.Reset()
	require.Equal(t, 0, m.CallCount())
	require.Empty(t, m.Calls())
}

func TestMockToolRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &MockTool{ToolName: "x"}
	_, err := m.Call(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
