// Package llm is the boundary to the locally hosted completion backend. The
// runtime composes a prompt, sends it here, and receives generated text or a
// classified failure.
package llm

import "context"

// Message is one turn of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries a composed prompt to the backend.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

// TokenUsage reports backend-side token accounting.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the backend's answer.
type CompletionResponse struct {
	Content    string         `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      TokenUsage     `json:"usage"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Client is a completion backend. Implementations must honor ctx cancellation
// and deadlines; the runtime relies on that for its completion timeout.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Model() string
}

func (r CompletionRequest) messages() []Message {
	msgs := make([]Message, 0, 2)
	if r.SystemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: r.SystemPrompt})
	}
	msgs = append(msgs, Message{Role: "user", Content: r.Prompt})
	return msgs
}
