package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter serves canned responses for registry tests.
type stubAdapter struct {
	name     string
	fetch    *Context
	fetchErr error
	hits     []SearchResult
	searchErr error
	calls    int
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Fetch(ctx context.Context, query string) (*Context, error) {
	a.calls++
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	if a.fetch == nil {
		return nil, nil
	}
	result := *a.fetch
	return &result, nil
}

func (a *stubAdapter) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if a.searchErr != nil {
		return nil, a.searchErr
	}
	return a.hits, nil
}

func newTestRegistry(t *testing.T, records ...DomainRecord) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, rec := range records {
		require.NoError(t, registry.Register(rec))
	}
	return registry
}

func domainRec(id string, priority int) DomainRecord {
	return DomainRecord{
		ID:       id,
		Name:     id,
		Priority: priority,
		Adapter:  &stubAdapter{name: id},
	}
}

func TestRegisterDuplicateLeavesRegistryUnchanged(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))

	err := registry.Register(domainRec("wiki", 1))

	var dup *DuplicateDomainError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "wiki", dup.ID)
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 3, registry.Snapshot()[0].Priority)
}

func TestRegisterValidation(t *testing.T) {
	registry := NewRegistry()

	assert.Error(t, registry.Register(DomainRecord{ID: "", Adapter: &stubAdapter{}}))
	assert.Error(t, registry.Register(DomainRecord{ID: "x", Adapter: nil}))
	assert.Error(t, registry.Register(DomainRecord{ID: "x", Adapter: &stubAdapter{}, Status: "bogus"}))
	assert.Equal(t, 0, registry.Len())
}

func TestRegisterDefaultsToActive(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))
	assert.Equal(t, StatusActive, registry.Snapshot()[0].Status)
}

func TestResolveOrdersByPriorityThenRegistration(t *testing.T) {
	registry := newTestRegistry(t,
		domainRec("wiki", 3),
		domainRec("archive", 1),
		domainRec("news", 1),
	)

	resolved := registry.Resolve([]string{"wiki", "news", "archive"})

	require.Len(t, resolved, 3)
	assert.Equal(t, "archive", resolved[0].ID)
	assert.Equal(t, "news", resolved[1].ID)
	assert.Equal(t, "wiki", resolved[2].ID)
}

func TestResolveSkipsOfflineAndUnknown(t *testing.T) {
	registry := newTestRegistry(t,
		domainRec("wiki", 3),
		domainRec("archive", 1),
	)
	require.NoError(t, registry.SetStatus("archive", StatusOffline))

	resolved := registry.Resolve([]string{"archive", "wiki", "nope"})

	require.Len(t, resolved, 1)
	assert.Equal(t, "wiki", resolved[0].ID)
}

func TestResolveDegradedStillServes(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))
	require.NoError(t, registry.SetStatus("wiki", StatusDegraded))

	assert.Len(t, registry.Resolve([]string{"wiki"}), 1)
}

func TestResolveEmptyCandidates(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))

	assert.Empty(t, registry.Resolve(nil))
	assert.Empty(t, registry.Resolve([]string{}))
}

func TestResolveDeduplicatesCandidates(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))

	assert.Len(t, registry.Resolve([]string{"wiki", "wiki", "wiki"}), 1)
}

func TestSetStatusUnknownDomain(t *testing.T) {
	registry := NewRegistry()

	err := registry.SetStatus("ghost", StatusOffline)

	var unknown *UnknownDomainError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.ID)
}

func TestSetStatusIdempotent(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))

	require.NoError(t, registry.SetStatus("wiki", StatusOffline))
	require.NoError(t, registry.SetStatus("wiki", StatusOffline))
	assert.Equal(t, StatusOffline, registry.Snapshot()[0].Status)
}

func TestRetrieveWrapsAdapterFailure(t *testing.T) {
	cause := fmt.Errorf("connect: connection refused")
	registry := newTestRegistry(t, DomainRecord{
		ID: "wiki", Name: "wiki", Priority: 3,
		Adapter: &stubAdapter{name: "wiki", fetchErr: cause},
	})

	_, err := registry.Retrieve(context.Background(), "wiki", "go")

	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, "wiki", retrieval.DomainID)
	assert.Equal(t, ReasonUnreachable, retrieval.Reason)
	assert.ErrorIs(t, err, cause)
}

func TestRetrieveEmptyContentIsFailure(t *testing.T) {
	registry := newTestRegistry(t, DomainRecord{
		ID: "wiki", Name: "wiki", Priority: 3,
		Adapter: &stubAdapter{name: "wiki", fetch: &Context{Text: "   "}},
	})

	_, err := registry.Retrieve(context.Background(), "wiki", "go")

	var retrieval *RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, ReasonEmpty, retrieval.Reason)
}

func TestRetrieveUnknownDomain(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Retrieve(context.Background(), "ghost", "go")

	var unknown *UnknownDomainError
	require.ErrorAs(t, err, &unknown)
}

func TestRetrieveSetsDomainID(t *testing.T) {
	registry := newTestRegistry(t, DomainRecord{
		ID: "wiki", Name: "wiki", Priority: 3,
		Adapter: &stubAdapter{name: "wiki", fetch: &Context{Source: "Wikipedia", Text: "Go is a language"}},
	})

	result, err := registry.Retrieve(context.Background(), "wiki", "go")

	require.NoError(t, err)
	assert.Equal(t, "wiki", result.DomainID)
	assert.Equal(t, "Go is a language", result.Text)
}

func TestRetrieveUsesCache(t *testing.T) {
	adapter := &stubAdapter{name: "wiki", fetch: &Context{Source: "Wikipedia", Text: "cached content"}}
	registry := NewRegistry(WithCache(DefaultCacheConfig()))
	require.NoError(t, registry.Register(DomainRecord{ID: "wiki", Name: "wiki", Priority: 3, Adapter: adapter}))

	_, err := registry.Retrieve(context.Background(), "wiki", "go")
	require.NoError(t, err)
	_, err = registry.Retrieve(context.Background(), "wiki", "go")
	require.NoError(t, err)

	assert.Equal(t, 1, adapter.calls)

	// A different query misses the cache.
	_, err = registry.Retrieve(context.Background(), "wiki", "rust")
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.calls)
}

func TestSearchAllMergesSortedByRelevance(t *testing.T) {
	registry := newTestRegistry(t,
		DomainRecord{ID: "wiki", Name: "wiki", Priority: 3, Adapter: &stubAdapter{
			name: "wiki",
			hits: []SearchResult{
				{Source: "Wikipedia", Title: "A", Relevance: 0.5},
				{Source: "Wikipedia", Title: "B", Relevance: 1.0},
			},
		}},
		DomainRecord{ID: "archive", Name: "archive", Priority: 1, Adapter: &stubAdapter{
			name: "archive",
			hits: []SearchResult{
				{Source: "arXiv", Title: "C", Relevance: 0.8},
			},
		}},
	)

	results := registry.SearchAll(context.Background(), "go", 5, []string{"wiki", "archive"})

	require.Len(t, results, 3)
	assert.Equal(t, "B", results[0].Title)
	assert.Equal(t, "C", results[1].Title)
	assert.Equal(t, "A", results[2].Title)
}

func TestSearchAllSkipsFailedDomains(t *testing.T) {
	registry := newTestRegistry(t,
		DomainRecord{ID: "wiki", Name: "wiki", Priority: 3, Adapter: &stubAdapter{
			name: "wiki",
			hits: []SearchResult{{Source: "Wikipedia", Title: "A", Relevance: 0.5}},
		}},
		DomainRecord{ID: "archive", Name: "archive", Priority: 1, Adapter: &stubAdapter{
			name: "archive", searchErr: errors.New("boom"),
		}},
	)

	results := registry.SearchAll(context.Background(), "go", 5, []string{"wiki", "archive"})

	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Title)
}

func TestSearchAllEmptyCandidatesSearchesEverything(t *testing.T) {
	registry := newTestRegistry(t,
		DomainRecord{ID: "wiki", Name: "wiki", Priority: 3, Adapter: &stubAdapter{
			name: "wiki",
			hits: []SearchResult{{Source: "Wikipedia", Title: "A", Relevance: 0.5}},
		}},
		DomainRecord{ID: "archive", Name: "archive", Priority: 1, Adapter: &stubAdapter{
			name: "archive",
			hits: []SearchResult{{Source: "arXiv", Title: "C", Relevance: 0.8}},
		}},
	)

	results := registry.SearchAll(context.Background(), "go", 5, nil)

	require.Len(t, results, 2)
	assert.Equal(t, "C", results[0].Title)
	assert.Equal(t, "A", results[1].Title)

	// Offline domains stay excluded from the fan-out.
	require.NoError(t, registry.SetStatus("wiki", StatusOffline))
	results = registry.SearchAll(context.Background(), "go", 5, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "C", results[0].Title)
}

func TestSearchAllNoResolvableDomains(t *testing.T) {
	registry := newTestRegistry(t, domainRec("wiki", 3))
	require.NoError(t, registry.SetStatus("wiki", StatusOffline))

	assert.Nil(t, registry.SearchAll(context.Background(), "go", 5, []string{"wiki"}))
}

func TestFailureReasonCodes(t *testing.T) {
	assert.Equal(t, ReasonRateLimited, failureReason(errors.New("server returned 429")))
	assert.Equal(t, ReasonParseError, failureReason(errors.New("decode response: unexpected EOF")))
	assert.Equal(t, ReasonUnreachable, failureReason(errors.New("dial tcp: connection refused")))
}

func TestScoreRelevance(t *testing.T) {
	assert.Equal(t, 1.0, scoreRelevance("Go is a programming language", "go language"))
	assert.Equal(t, 0.5, scoreRelevance("Go is great", "go rust"))
	assert.Equal(t, 0.0, scoreRelevance("something else", ""))
}
