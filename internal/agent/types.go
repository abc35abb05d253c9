// Package agent implements the shared agent runtime: a per-agent state
// machine that serializes prompt handling, pulls context from the domain
// registry, calls the completion backend, and tracks health metrics and a
// bounded chat history.
package agent

import (
	"time"

	"agentone/internal/llm"
)

// Status is the lifecycle state of an agent instance.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
)

// ChatRole identifies the author of a chat history entry.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleAgent ChatRole = "agent"
)

// ChatMessage is one entry of an agent's chat history.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics are health values recomputed on every request cycle and on the
// periodic tick. They are never externally set.
type Metrics struct {
	MemoryUsageMB  float64 `json:"memory_usage_mb"`
	RequestRate    float64 `json:"request_rate"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	PromptsHandled uint64  `json:"prompts_handled"`
	LastError      string  `json:"last_error,omitempty"`
}

// Snapshot is a tear-free copy of an agent's observable state. Readers get
// either the pre- or post-update view of an in-flight prompt, never a torn
// intermediate.
type Snapshot struct {
	AgentID     string        `json:"agent_id"`
	Name        string        `json:"name"`
	Role        string        `json:"role"`
	Status      Status        `json:"status"`
	Metrics     Metrics       `json:"metrics"`
	Config      Config        `json:"config"`
	ChatHistory []ChatMessage `json:"chat_history"`
}

// Response is a successful prompt result.
type Response struct {
	AgentID        string         `json:"agent_id"`
	Text           string         `json:"text"`
	Model          string         `json:"model"`
	ContextSources []string       `json:"context_sources,omitempty"`
	Usage          llm.TokenUsage `json:"usage"`
	Duration       time.Duration  `json:"duration"`
}
