package tool

import (
	"context"
	"sync"
)

// MockTool is a Tool implementation for tests: a fixed or error response,
// configurable per instance, with call history tracking so a test can
// assert on what a cell body actually invoked it with.
type MockTool struct {
	// ToolName is returned by Name.
	ToolName string

	// Responses is the sequence of outputs returned on successive calls;
	// the last response repeats once exhausted. Empty returns an empty
	// map.
	Responses []map[string]interface{}

	// Err, if set, is returned instead of a response.
	Err error

	mu        sync.Mutex
	calls     []MockToolCall
	callIndex int
}

// MockToolCall records one invocation of Call.
type MockToolCall struct {
	Input map[string]interface{}
}

// Name implements Tool.
func (m *MockTool) Name() string { return m.ToolName }

// Call implements Tool.
func (m *MockTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockToolCall{Input: input})

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return map[string]interface{}{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockTool) Calls() []MockToolCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockToolCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Call has run.
func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears call history and rewinds the response index.
func (m *MockTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callIndex = 0
}
