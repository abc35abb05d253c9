// Package handlers contains the dashboard API request handlers.
package handlers

// APIResponse is the standard envelope for every API reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
