package webui

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agentone/internal/agent"
	"agentone/internal/mcp"
)

// HealthResponse is the /api/health payload: overall status plus per-status
// rollups of agents and domains. Status degrades to "degraded" when any agent
// is in error or any domain is not active.
type HealthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Agents    map[string]int `json:"agents"`
	Domains   map[string]int `json:"domains"`
}

// StatusResponse is the /api/status payload: one poll of the whole system.
type StatusResponse struct {
	Timestamp time.Time          `json:"timestamp"`
	Uptime    string             `json:"uptime"`
	Model     string             `json:"model"`
	Agents    []agent.Snapshot   `json:"agents"`
	Domains   []mcp.DomainRecord `json:"domains"`
}

// EventMessage is the envelope pushed over the /api/events stream.
type EventMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// eventConnection wraps one dashboard WebSocket subscriber. Writes go through
// the Send channel so only the writer goroutine touches the connection.
type eventConnection struct {
	conn   *websocket.Conn
	send   chan EventMessage
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func (c *eventConnection) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
	})
}
