package mcp

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultArxivBaseURL = "http://export.arxiv.org/api/query"
	arxivAdapterName    = "arxiv"
)

// ArxivAdapter retrieves academic paper context through the arXiv Atom API.
type ArxivAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// ArxivOption customizes an ArxivAdapter.
type ArxivOption func(*ArxivAdapter)

// WithArxivBaseURL overrides the arXiv endpoint, mainly for tests.
func WithArxivBaseURL(baseURL string) ArxivOption {
	return func(a *ArxivAdapter) { a.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithArxivTimeout bounds each HTTP request.
func WithArxivTimeout(timeout time.Duration) ArxivOption {
	return func(a *ArxivAdapter) { a.httpClient.Timeout = timeout }
}

// NewArxivAdapter creates an arXiv adapter with default settings.
func NewArxivAdapter(opts ...ArxivOption) *ArxivAdapter {
	a := &ArxivAdapter{
		baseURL: defaultArxivBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ArxivAdapter) Name() string { return arxivAdapterName }

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Search queries the arXiv API sorted by relevance.
func (a *ArxivAdapter) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	endpoint := fmt.Sprintf("%s?%s", a.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("arxiv request failed: status %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	results := make([]SearchResult, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := normalizeWhitespace(entry.Title)
		abstract := normalizeWhitespace(entry.Summary)

		authors := make([]string, 0, len(entry.Authors))
		for _, author := range entry.Authors {
			authors = append(authors, author.Name)
		}
		categories := make([]string, 0, len(entry.Categories))
		for _, cat := range entry.Categories {
			categories = append(categories, cat.Term)
		}

		results = append(results, SearchResult{
			Source:    arxivAdapterName,
			Title:     title,
			Content:   abstract,
			URL:       entry.ID,
			Relevance: scoreRelevance(title+" "+abstract, query),
			Metadata: map[string]any{
				"authors":    authors,
				"categories": categories,
				"published":  entry.Published,
			},
		})
	}
	return results, nil
}

// Fetch assembles paper context from the top relevance hits.
func (a *ArxivAdapter) Fetch(ctx context.Context, query string) (*Context, error) {
	hits, err := a.Search(ctx, query, 3)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	var sections []string
	for _, hit := range hits {
		var authors string
		if names, ok := hit.Metadata["authors"].([]string); ok && len(names) > 0 {
			authors = strings.Join(names, ", ")
		}
		section := hit.Title
		if authors != "" {
			section += " — " + authors
		}
		section += "\n" + hit.Content
		sections = append(sections, section)
	}

	return &Context{
		Source: arxivAdapterName,
		Title:  hits[0].Title,
		Text:   strings.Join(sections, "\n\n"),
		URL:    hits[0].URL,
		Metadata: map[string]any{
			"papers": len(hits),
		},
	}, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
