// Package mcp implements the domain registry: a set of external context
// sources (domains), each backed by an adapter, that agents query for
// structured context before prompting the model.
package mcp

import (
	"context"
	"fmt"
	"strings"
)

// DomainStatus is the liveness of a registered domain.
type DomainStatus string

const (
	StatusActive   DomainStatus = "active"
	StatusDegraded DomainStatus = "degraded"
	StatusOffline  DomainStatus = "offline"
)

// Valid reports whether s is a known status value.
func (s DomainStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDegraded, StatusOffline:
		return true
	}
	return false
}

// Context is structured text retrieved from a domain to augment a prompt.
type Context struct {
	DomainID string         `json:"domain_id"`
	Source   string         `json:"source"`
	Title    string         `json:"title,omitempty"`
	Text     string         `json:"text"`
	URL      string         `json:"url,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult is a single hit from a domain search, normalized across
// adapters so results from different sources can be merged.
type SearchResult struct {
	Source    string         `json:"source"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	URL       string         `json:"url,omitempty"`
	Relevance float64        `json:"relevance_score"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Adapter fetches context for a query against one external source. Adapters
// are stateless beyond connection settings and must be safe for concurrent
// use.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query string) (*Context, error)
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// DomainRecord describes one registered domain. Lower Priority wins when
// multiple domains could answer the same query; ties break by registration
// order.
type DomainRecord struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Priority int          `json:"priority"`
	Status   DomainStatus `json:"status"`
	Adapter  Adapter      `json:"-"`
}

// DuplicateDomainError is returned when registering an id already present.
type DuplicateDomainError struct {
	ID string
}

func (e *DuplicateDomainError) Error() string {
	return fmt.Sprintf("domain %q already registered", e.ID)
}

// UnknownDomainError is returned when referencing an unregistered id.
type UnknownDomainError struct {
	ID string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("domain %q not registered", e.ID)
}

// Retrieval failure reason codes.
const (
	ReasonUnreachable = "unreachable"
	ReasonRateLimited = "rate-limited"
	ReasonParseError  = "parse-error"
	ReasonEmpty       = "empty-result"
)

// RetrievalError wraps an adapter-level failure into a uniform shape so
// callers never see adapter-specific error types.
type RetrievalError struct {
	DomainID string
	Reason   string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval from %q failed (%s): %v", e.DomainID, e.Reason, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// scoreRelevance returns the fraction of query terms present in text,
// used to rank merged search hits across domains.
func scoreRelevance(text, query string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
