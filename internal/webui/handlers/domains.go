package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"agentone/internal/mcp"
)

// DomainHandler serves the domain registry endpoints.
type DomainHandler struct {
	registry *mcp.Registry
}

// NewDomainHandler creates a new domain handler.
func NewDomainHandler(registry *mcp.Registry) *DomainHandler {
	return &DomainHandler{registry: registry}
}

// StatusRequest is the body of a domain status update.
type StatusRequest struct {
	Status mcp.DomainStatus `json:"status"`
}

// ListDomains returns every registered domain in preference order.
func (h *DomainHandler) ListDomains(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    h.registry.Snapshot(),
	})
}

// SetStatus updates one domain's liveness status.
func (h *DomainHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("unknown status %q", req.Status),
		})
		return
	}

	id := c.Param("id")
	if err := h.registry.SetStatus(id, req.Status); err != nil {
		var unknown *mcp.UnknownDomainError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusNotFound, APIResponse{
				Success: false,
				Error:   err.Error(),
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
		Message: fmt.Sprintf("domain %s set to %s", id, req.Status),
	})
}
