package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agentone/internal/llm"
	"agentone/internal/logging"
	"agentone/internal/mcp"
	"agentone/internal/observability"
	"agentone/internal/tokenutil"
)

const defaultCompletionTimeout = 60 * time.Second

// Runtime is the shared state machine behind every agent variant. One mutex
// serializes HandlePrompt per instance so chat history and metrics never see
// concurrent writers; a separate read-write lock keeps Snapshot non-blocking
// while a prompt is in flight. Different Runtime instances share no mutable
// state and may process concurrently.
type Runtime struct {
	id       string
	policy   Policy
	registry *mcp.Registry
	client   llm.Client

	completionTimeout time.Duration
	started           time.Time
	logger            logging.Logger
	metrics           *observability.Metrics

	// handleMu serializes the prompt pipeline; a second concurrent call on
	// the same instance waits here rather than interleaving.
	handleMu sync.Mutex

	// stateMu guards everything below.
	stateMu    sync.RWMutex
	status     Status
	config     Config
	history    *chatHistory
	rate       *rateWindow
	prompts    uint64
	lastError  string
	lastMemory float64
}

// RuntimeOption customizes a Runtime.
type RuntimeOption func(*Runtime)

// WithCompletionTimeout bounds each completion call. The pipeline treats a
// timeout identically to a backend failure.
func WithCompletionTimeout(timeout time.Duration) RuntimeOption {
	return func(r *Runtime) {
		if timeout > 0 {
			r.completionTimeout = timeout
		}
	}
}

// WithRuntimeLogger sets the runtime logger.
func WithRuntimeLogger(logger logging.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = logger }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(metrics *observability.Metrics) RuntimeOption {
	return func(r *Runtime) { r.metrics = metrics }
}

// WithHistoryLimit caps the chat history ring buffer.
func WithHistoryLimit(limit int) RuntimeOption {
	return func(r *Runtime) {
		if limit > 0 {
			r.history = newChatHistory(limit)
		}
	}
}

// NewRuntime composes a policy with the shared pipeline. The initial config
// is the policy default and must validate against its bounds.
func NewRuntime(id string, policy Policy, registry *mcp.Registry, client llm.Client, opts ...RuntimeOption) (*Runtime, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("agent id is required")
	}
	if registry == nil {
		return nil, errors.New("domain registry is required")
	}
	if client == nil {
		return nil, errors.New("completion client is required")
	}

	cfg := policy.DefaultConfig.clone()
	if err := cfg.Validate(nil); err != nil {
		return nil, fmt.Errorf("default config for %s: %w", id, err)
	}

	r := &Runtime{
		id:                id,
		policy:            policy,
		registry:          registry,
		client:            client,
		completionTimeout: defaultCompletionTimeout,
		started:           time.Now(),
		status:            StatusIdle,
		config:            cfg,
		rate:              newRateWindow(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = newChatHistory(defaultHistoryLimit)
	}
	if r.logger == nil {
		r.logger = logging.NewComponentLogger("agent-" + id)
	}
	return r, nil
}

// ID returns the agent's fixed identifier.
func (r *Runtime) ID() string { return r.id }

// Policy returns the variant policy this runtime was composed with.
func (r *Runtime) Policy() Policy { return r.policy }

// HandlePrompt runs the full pipeline: record the user message, pull context
// from the allowed domains in priority order up to the context-size budget,
// compose the variant prompt, call the completion backend under a timeout,
// and record the outcome. Per-domain retrieval failures are skipped; absence
// of context is not fatal. A backend failure moves the agent to Error, which
// self-heals on the next successful cycle.
func (r *Runtime) HandlePrompt(ctx context.Context, prompt string) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt is required")
	}

	r.handleMu.Lock()
	defer r.handleMu.Unlock()

	start := time.Now()
	r.metrics.SetProcessing(r.id, true)
	defer r.metrics.SetProcessing(r.id, false)

	cfg := r.beginProcessing(prompt)

	contexts, sources := r.gatherContext(ctx, prompt, cfg)
	composed := r.policy.Compose(prompt, contexts)

	completionCtx, cancel := context.WithTimeout(ctx, r.completionTimeout)
	defer cancel()

	resp, err := r.client.Complete(completionCtx, llm.CompletionRequest{
		SystemPrompt: r.policy.SystemPrompt,
		Prompt:       composed,
	})
	if err != nil {
		reason := completionFailureReason(err)
		r.failProcessing(reason, err)
		r.metrics.ObservePrompt(r.id, "error", time.Since(start))
		r.logger.Error("completion failed (%s): %v", reason, err)
		return nil, &CompletionError{AgentID: r.id, Reason: reason, Err: err}
	}

	r.finishProcessing(resp.Content)
	r.metrics.ObservePrompt(r.id, "success", time.Since(start))

	return &Response{
		AgentID:        r.id,
		Text:           resp.Content,
		Model:          r.client.Model(),
		ContextSources: sources,
		Usage:          resp.Usage,
		Duration:       time.Since(start),
	}, nil
}

// Research is a direct synonym for HandlePrompt, kept for parity with the
// dashboard's researcher entry point.
func (r *Runtime) Research(ctx context.Context, text string) (*Response, error) {
	return r.HandlePrompt(ctx, text)
}

// AnalyzeStrategy is a direct synonym for HandlePrompt for the strategist.
func (r *Runtime) AnalyzeStrategy(ctx context.Context, text string) (*Response, error) {
	return r.HandlePrompt(ctx, text)
}

// Snapshot returns a tear-free copy of the agent's observable state. Safe to
// call while another goroutine is inside HandlePrompt.
func (r *Runtime) Snapshot() Snapshot {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	memory := r.lastMemory
	if memory == 0 {
		memory = sampleMemoryMB()
	}

	return Snapshot{
		AgentID: r.id,
		Name:    r.policy.Name,
		Role:    r.policy.Role,
		Status:  r.status,
		Metrics: Metrics{
			MemoryUsageMB:  memory,
			RequestRate:    r.rate.perMinute(),
			UptimeSeconds:  time.Since(r.started).Seconds(),
			PromptsHandled: r.prompts,
			LastError:      r.lastError,
		},
		Config:      r.config.clone(),
		ChatHistory: r.history.snapshot(),
	}
}

// Configure validates the new config against every declared bound and, on
// success, replaces the current config atomically. Validation failures leave
// the existing config untouched. Accepted configuration is stored but not
// enforced against runtime behavior beyond the context-size budget.
func (r *Runtime) Configure(cfg Config) error {
	known := make(map[string]bool)
	for _, rec := range r.registry.Snapshot() {
		known[rec.ID] = true
	}
	if err := cfg.Validate(known); err != nil {
		return err
	}

	r.stateMu.Lock()
	r.config = cfg.clone()
	r.stateMu.Unlock()

	r.logger.Info("configuration replaced: memory=%dMB rate=%d ctx=%d level=%s domains=%v",
		cfg.MemoryLimitMB, cfg.MaxRequestRate, cfg.ContextSize, cfg.SecurityLevel, cfg.AllowedDomains)
	return nil
}

// Tick refreshes sampled metrics outside the request path; the manager calls
// it periodically.
func (r *Runtime) Tick() {
	memory := sampleMemoryMB()
	r.stateMu.Lock()
	r.lastMemory = memory
	r.rate.prune()
	r.stateMu.Unlock()
}

func (r *Runtime) beginProcessing(prompt string) Config {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	r.status = StatusProcessing
	r.history.append(ChatMessage{Role: RoleUser, Text: prompt, Timestamp: time.Now()})
	return r.config.clone()
}

func (r *Runtime) finishProcessing(responseText string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	r.history.append(ChatMessage{Role: RoleAgent, Text: responseText, Timestamp: time.Now()})
	r.rate.record()
	r.prompts++
	r.lastError = ""
	r.lastMemory = sampleMemoryMB()
	r.status = StatusIdle
}

func (r *Runtime) failProcessing(reason string, err error) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	placeholder := fmt.Sprintf("I could not complete that request: the model backend failed (%s).", reason)
	r.history.append(ChatMessage{Role: RoleAgent, Text: placeholder, Timestamp: time.Now()})
	r.rate.record()
	r.lastError = err.Error()
	r.lastMemory = sampleMemoryMB()
	r.status = StatusError
}

// gatherContext retrieves context from the agent's allowed domains in
// priority order, stopping once the configured token budget is reached.
// Failed domains are logged, counted, and skipped.
func (r *Runtime) gatherContext(ctx context.Context, prompt string, cfg Config) ([]mcp.Context, []string) {
	records := r.registry.Resolve(cfg.AllowedDomains)
	if len(records) == 0 {
		return nil, nil
	}

	budget := cfg.ContextSize
	var (
		contexts []mcp.Context
		sources  []string
		used     int
	)

	for _, rec := range records {
		if used >= budget {
			break
		}

		retrieved, err := r.registry.Retrieve(ctx, rec.ID, prompt)
		if err != nil {
			var retrievalErr *mcp.RetrievalError
			reason := "error"
			if errors.As(err, &retrievalErr) {
				reason = retrievalErr.Reason
			}
			r.metrics.ObserveRetrievalFailure(rec.ID, reason)
			r.logger.Warn("skipping domain %s: %v", rec.ID, err)
			continue
		}

		remaining := budget - used
		tokens := tokenutil.CountTokens(retrieved.Text)
		if tokens > remaining {
			retrieved.Text = tokenutil.TruncateToTokens(retrieved.Text, remaining)
			tokens = remaining
		}
		used += tokens
		contexts = append(contexts, *retrieved)
		sources = append(sources, rec.ID)
	}

	return contexts, sources
}

func completionFailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case strings.Contains(strings.ToLower(err.Error()), "decode"):
		return ReasonMalformed
	case strings.Contains(strings.ToLower(err.Error()), "connection refused"),
		strings.Contains(strings.ToLower(err.Error()), "no such host"):
		return ReasonUnreachable
	default:
		return ReasonBackend
	}
}
