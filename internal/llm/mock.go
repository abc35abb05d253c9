package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. When Err is set every call fails
// with it; otherwise Response (or a canned default) is returned.
type MockClient struct {
	ModelName string
	Response  string
	Err       error

	mu    sync.Mutex
	calls []CompletionRequest
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	content := m.Response
	if content == "" {
		content = "mock completion"
	}
	return &CompletionResponse{
		Content:    content,
		StopReason: "stop",
		Usage: TokenUsage{
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
		},
	}, nil
}

func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
