// Package observability exposes Prometheus collectors for the agent system.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors that report agent activity.
type Metrics struct {
	prompts           *prometheus.CounterVec
	promptDuration    *prometheus.HistogramVec
	retrievalFailures *prometheus.CounterVec
	processing        *prometheus.GaugeVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the package-level metrics instance registered with the
// global Prometheus registry. The collectors are created only once to avoid
// duplicate registration panics when components are instantiated multiple
// times.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Supply a fresh registry in tests that need unique metric names. Registration
// errors panic, mirroring promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	prompts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentone",
			Subsystem: "agent",
			Name:      "prompts_total",
			Help:      "Total prompts handled, by agent and outcome.",
		},
		[]string{"agent", "outcome"},
	)
	promptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agentone",
			Subsystem: "agent",
			Name:      "prompt_duration_seconds",
			Help:      "End-to-end prompt handling duration.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent"},
	)
	retrievalFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentone",
			Subsystem: "mcp",
			Name:      "retrieval_failures_total",
			Help:      "Domain retrievals that failed and were skipped.",
		},
		[]string{"domain", "reason"},
	)
	processing := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "agentone",
			Subsystem: "agent",
			Name:      "processing",
			Help:      "Whether an agent is currently processing a prompt.",
		},
		[]string{"agent"},
	)

	reg.MustRegister(prompts, promptDuration, retrievalFailures, processing)
	return &Metrics{
		prompts:           prompts,
		promptDuration:    promptDuration,
		retrievalFailures: retrievalFailures,
		processing:        processing,
	}
}

// ObservePrompt records one completed prompt cycle.
func (m *Metrics) ObservePrompt(agentID, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.prompts.WithLabelValues(agentID, outcome).Inc()
	m.promptDuration.WithLabelValues(agentID).Observe(duration.Seconds())
}

// ObserveRetrievalFailure records a skipped domain retrieval.
func (m *Metrics) ObserveRetrievalFailure(domainID, reason string) {
	if m == nil {
		return
	}
	m.retrievalFailures.WithLabelValues(domainID, reason).Inc()
}

// SetProcessing flags whether an agent is inside its prompt pipeline.
func (m *Metrics) SetProcessing(agentID string, active bool) {
	if m == nil {
		return
	}
	value := 0.0
	if active {
		value = 1.0
	}
	m.processing.WithLabelValues(agentID).Set(value)
}
