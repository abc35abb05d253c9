package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	defaultWikipediaBaseURL = "https://en.wikipedia.org"
	wikipediaAdapterName    = "wikipedia"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// WikipediaAdapter retrieves encyclopedia context through the MediaWiki
// search API and the REST summary endpoint.
type WikipediaAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// WikipediaOption customizes a WikipediaAdapter.
type WikipediaOption func(*WikipediaAdapter)

// WithWikipediaBaseURL overrides the Wikipedia host, mainly for tests.
func WithWikipediaBaseURL(baseURL string) WikipediaOption {
	return func(a *WikipediaAdapter) { a.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithWikipediaTimeout bounds each HTTP request.
func WithWikipediaTimeout(timeout time.Duration) WikipediaOption {
	return func(a *WikipediaAdapter) { a.httpClient.Timeout = timeout }
}

// NewWikipediaAdapter creates a Wikipedia adapter with default settings.
func NewWikipediaAdapter(opts ...WikipediaOption) *WikipediaAdapter {
	a := &WikipediaAdapter{
		baseURL: defaultWikipediaBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *WikipediaAdapter) Name() string { return wikipediaAdapterName }

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			PageID  int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type wikipediaSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Search queries the MediaWiki search API, main namespace only.
func (a *WikipediaAdapter) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprintf("%d", maxResults))
	params.Set("srnamespace", "0")
	params.Set("srprop", "snippet|title|pageid")

	endpoint := fmt.Sprintf("%s/w/api.php?%s", a.baseURL, params.Encode())

	var response wikipediaSearchResponse
	if err := a.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(response.Query.Search))
	for _, item := range response.Query.Search {
		snippet := stripHTML(item.Snippet)
		results = append(results, SearchResult{
			Source:    wikipediaAdapterName,
			Title:     item.Title,
			Content:   snippet,
			URL:       a.pageURL(item.Title),
			Relevance: scoreRelevance(item.Title+" "+snippet, query),
			Metadata: map[string]any{
				"page_id": item.PageID,
			},
		})
	}
	return results, nil
}

// Fetch returns article context for the best search hit: the REST summary
// extract when available, otherwise the search snippet.
func (a *WikipediaAdapter) Fetch(ctx context.Context, query string) (*Context, error) {
	hits, err := a.Search(ctx, query, 3)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	top := hits[0]
	text := top.Content
	title := top.Title

	if summary, err := a.summary(ctx, top.Title); err == nil && summary.Extract != "" {
		text = summary.Extract
		if summary.Title != "" {
			title = summary.Title
		}
	}

	// Fold in the remaining snippets so a thin summary still carries signal.
	var extra []string
	for _, hit := range hits[1:] {
		if hit.Content != "" {
			extra = append(extra, fmt.Sprintf("%s: %s", hit.Title, hit.Content))
		}
	}
	if len(extra) > 0 {
		text = text + "\n\nRelated articles:\n" + strings.Join(extra, "\n")
	}

	return &Context{
		Source: wikipediaAdapterName,
		Title:  title,
		Text:   text,
		URL:    top.URL,
		Metadata: map[string]any{
			"relevance_score": top.Relevance,
		},
	}, nil
}

func (a *WikipediaAdapter) summary(ctx context.Context, title string) (*wikipediaSummaryResponse, error) {
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", a.baseURL, url.PathEscape(title))
	var response wikipediaSummaryResponse
	if err := a.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (a *WikipediaAdapter) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wikipedia request failed: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}

func (a *WikipediaAdapter) pageURL(title string) string {
	return fmt.Sprintf("%s/wiki/%s", a.baseURL, strings.ReplaceAll(title, " ", "_"))
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}
