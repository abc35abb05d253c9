package mcp

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"agentone/internal/logging"
)

const searchConcurrency = 4

// Registry holds all registered domains and resolves the best ones for a
// query. It is shared read-mostly state: status transitions are the only
// writes after startup, and resolution never blocks behind an in-flight
// retrieval.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*registeredDomain
	nextSeq int

	cache  *retrievalCache
	logger logging.Logger
}

type registeredDomain struct {
	DomainRecord
	seq int
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger logging.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithCache enables the retrieval result cache.
func WithCache(cfg CacheConfig) RegistryOption {
	return func(r *Registry) { r.cache = newRetrievalCache(cfg) }
}

// NewRegistry creates an empty domain registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		records: make(map[string]*registeredDomain),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewComponentLogger("mcp-registry")
	}
	return r
}

// Register adds a domain. The id must be unique for the registry's lifetime;
// a duplicate leaves the registry unchanged.
func (r *Registry) Register(rec DomainRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("domain id is required")
	}
	if rec.Adapter == nil {
		return errors.New("domain adapter is required")
	}
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	if !rec.Status.Valid() {
		return errors.New("invalid domain status")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; exists {
		return &DuplicateDomainError{ID: rec.ID}
	}

	r.records[rec.ID] = &registeredDomain{DomainRecord: rec, seq: r.nextSeq}
	r.nextSeq++
	r.logger.Info("registered domain %s (priority %d, status %s)", rec.ID, rec.Priority, rec.Status)
	return nil
}

// SetStatus transitions a domain to any status; the call is idempotent.
// Offline domains become invisible to Resolve immediately, but retrievals
// already dispatched are not cancelled.
func (r *Registry) SetStatus(id string, status DomainStatus) error {
	if !status.Valid() {
		return errors.New("invalid domain status")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &UnknownDomainError{ID: id}
	}
	if rec.Status != status {
		r.logger.Info("domain %s status %s -> %s", id, rec.Status, status)
		rec.Status = status
	}
	return nil
}

// Resolve returns the subset of candidates that can serve a query: non-offline
// domains sorted ascending by priority, ties broken by registration order.
// Degraded domains still resolve; only Offline is excluded, so a flaky source
// keeps serving until it is taken offline explicitly. Unknown ids and an empty
// candidate set yield an empty result, not an error.
func (r *Registry) Resolve(candidates []string) []DomainRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(candidates))
	matched := make([]*registeredDomain, 0, len(candidates))
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec, ok := r.records[id]
		if !ok || rec.Status == StatusOffline {
			continue
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].seq < matched[j].seq
	})

	out := make([]DomainRecord, len(matched))
	for i, rec := range matched {
		out[i] = rec.DomainRecord
	}
	return out
}

// Retrieve fetches context for query from one domain. Adapter-level errors are
// wrapped into a RetrievalError with a uniform reason code. The registry lock
// is not held across the adapter call.
func (r *Registry) Retrieve(ctx context.Context, domainID, query string) (*Context, error) {
	r.mu.RLock()
	rec, ok := r.records[domainID]
	var adapter Adapter
	if ok {
		adapter = rec.Adapter
	}
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownDomainError{ID: domainID}
	}

	if r.cache != nil {
		if cached, hit := r.cache.get(domainID, query); hit {
			return cached, nil
		}
	}

	result, err := adapter.Fetch(ctx, query)
	if err != nil {
		return nil, &RetrievalError{DomainID: domainID, Reason: failureReason(err), Err: err}
	}
	if result == nil || strings.TrimSpace(result.Text) == "" {
		return nil, &RetrievalError{DomainID: domainID, Reason: ReasonEmpty, Err: errors.New("adapter returned no content")}
	}

	result.DomainID = domainID
	if r.cache != nil {
		r.cache.put(domainID, query, result)
	}
	return result, nil
}

// SearchAll fans out a search across the resolvable candidates and merges the
// hits sorted by relevance. An empty candidate list searches every registered
// domain. Per-domain failures are logged and skipped.
func (r *Registry) SearchAll(ctx context.Context, query string, maxResults int, candidates []string) []SearchResult {
	if len(candidates) == 0 {
		for _, rec := range r.Snapshot() {
			candidates = append(candidates, rec.ID)
		}
	}
	domains := r.Resolve(candidates)
	if len(domains) == 0 {
		return nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	var (
		mu     sync.Mutex
		merged []SearchResult
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(searchConcurrency)

	for _, domain := range domains {
		domain := domain
		group.Go(func() error {
			hits, err := domain.Adapter.Search(groupCtx, query, maxResults)
			if err != nil {
				r.logger.Warn("search on domain %s failed: %v", domain.ID, err)
				return nil
			}
			mu.Lock()
			merged = append(merged, hits...)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Relevance > merged[j].Relevance
	})

	limit := maxResults * len(domains)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Snapshot returns all domain records ordered by priority then registration,
// for the dashboard and health rollups.
func (r *Registry) Snapshot() []DomainRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*registeredDomain, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, rec)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority < all[j].Priority
		}
		return all[i].seq < all[j].seq
	})

	out := make([]DomainRecord, len(all))
	for i, rec := range all {
		out[i] = rec.DomainRecord
	}
	return out
}

// Len returns the number of registered domains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// failureReason maps an adapter error onto one of the uniform reason codes.
func failureReason(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonUnreachable
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return ReasonRateLimited
	case strings.Contains(lower, "decode") || strings.Contains(lower, "parse") || strings.Contains(lower, "unmarshal"):
		return ReasonParseError
	default:
		return ReasonUnreachable
	}
}
