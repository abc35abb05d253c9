package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agentone/internal/agent"
)

// AgentHandler serves the per-agent endpoints: listing, status, prompts and
// configuration.
type AgentHandler struct {
	manager *agent.Manager
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(manager *agent.Manager) *AgentHandler {
	return &AgentHandler{manager: manager}
}

// PromptRequest is the body of a prompt submission.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// AgentSummary is one catalog entry: the live snapshot plus the static
// variant description.
type AgentSummary struct {
	agent.Snapshot
	Variant      string   `json:"variant"`
	Capabilities []string `json:"capabilities"`
}

// ListAgents returns the agent catalog with a live snapshot per agent.
func (h *AgentHandler) ListAgents(c *gin.Context) {
	ids := h.manager.IDs()
	summaries := make([]AgentSummary, 0, len(ids))
	for _, id := range ids {
		runtime, err := h.manager.Get(id)
		if err != nil {
			continue
		}
		policy := runtime.Policy()
		summaries = append(summaries, AgentSummary{
			Snapshot:     runtime.Snapshot(),
			Variant:      string(policy.Variant),
			Capabilities: policy.Capabilities,
		})
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    summaries,
	})
}

// GetStatus returns one agent's snapshot.
func (h *AgentHandler) GetStatus(c *gin.Context) {
	runtime, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    runtime.Snapshot(),
	})
}

// SendPrompt runs one prompt through an agent and returns the completion.
func (h *AgentHandler) SendPrompt(c *gin.Context) {
	runtime, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "prompt is required",
		})
		return
	}

	resp, err := runtime.HandlePrompt(c.Request.Context(), req.Prompt)
	if err != nil {
		status := http.StatusBadGateway
		var completionErr *agent.CompletionError
		if errors.As(err, &completionErr) && completionErr.Reason == agent.ReasonTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// Configure validates and applies a full replacement configuration for one
// agent. Validation errors report every violating field at once.
func (h *AgentHandler) Configure(c *gin.Context) {
	runtime, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	var cfg agent.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	if err := runtime.Configure(cfg); err != nil {
		var invalid *agent.InvalidConfigError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, APIResponse{
				Success: false,
				Error:   invalid.Error(),
				Data:    gin.H{"fields": invalid.Fields()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "configuration updated",
		Data:    runtime.Snapshot().Config,
	})
}
