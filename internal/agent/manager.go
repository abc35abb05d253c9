package agent

import (
	"context"
	"time"
)

// Manager owns the closed set of agent instances, selected by id through a
// lookup table. Agents are created once at startup and live for the process
// lifetime.
type Manager struct {
	agents map[string]*Runtime
	order  []string
}

// NewManager builds a manager over the given runtimes, keyed by their ids.
func NewManager(runtimes ...*Runtime) *Manager {
	m := &Manager{agents: make(map[string]*Runtime, len(runtimes))}
	for _, rt := range runtimes {
		if _, exists := m.agents[rt.ID()]; exists {
			continue
		}
		m.agents[rt.ID()] = rt
		m.order = append(m.order, rt.ID())
	}
	return m
}

// Get returns the agent with the given id or a NotFoundError.
func (m *Manager) Get(id string) (*Runtime, error) {
	rt, ok := m.agents[id]
	if !ok {
		return nil, &NotFoundError{AgentID: id}
	}
	return rt, nil
}

// IDs returns the agent ids in registration order.
func (m *Manager) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Snapshots returns every agent's state snapshot, ordered by id registration.
func (m *Manager) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.agents[id].Snapshot())
	}
	return out
}

// RunMetricsLoop refreshes sampled metrics on a periodic tick until ctx is
// cancelled.
func (m *Manager) RunMetricsLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range m.order {
				m.agents[id].Tick()
			}
		}
	}
}
