package agent

import "fmt"

// Completion failure reason codes.
const (
	ReasonTimeout     = "timeout"
	ReasonUnreachable = "unreachable"
	ReasonMalformed   = "malformed-output"
	ReasonBackend     = "backend-error"
)

// CompletionError reports a failed or timed-out completion call. It is
// surfaced to the caller; the same failure is also appended to chat history
// as a user-visible agent message.
type CompletionError struct {
	AgentID string
	Reason  string
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion for agent %q failed (%s): %v", e.AgentID, e.Reason, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// NotFoundError is returned when a caller references an unknown agent id.
type NotFoundError struct {
	AgentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.AgentID)
}
