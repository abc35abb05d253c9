package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agentone/internal/mcp"
)

const defaultSearchResults = 5

// SearchHandler serves the cross-domain search endpoint.
type SearchHandler struct {
	registry *mcp.Registry
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(registry *mcp.Registry) *SearchHandler {
	return &SearchHandler{registry: registry}
}

// SearchRequest is the body of a cross-domain search. An empty domain list
// searches every available domain.
type SearchRequest struct {
	Query      string   `json:"query"`
	Domains    []string `json:"domains,omitempty"`
	MaxResults int      `json:"maxResults,omitempty"`
}

// Search fans the query out to the requested domains and returns the merged
// results ordered by relevance. Domains that fail are skipped rather than
// failing the whole search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "query is required",
		})
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultSearchResults
	}

	results := h.registry.SearchAll(c.Request.Context(), req.Query, req.MaxResults, req.Domains)

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: gin.H{
			"query":   req.Query,
			"results": results,
			"count":   len(results),
		},
	})
}
