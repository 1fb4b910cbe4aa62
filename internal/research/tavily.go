package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTavilyURL is the public Tavily search endpoint.
const DefaultTavilyURL = "https://api.tavily.com"

const maxSearchResponseBytes = 4 << 20

// ErrNoTavilyKey is returned when the Tavily key is missing.
var ErrNoTavilyKey = errors.New("no Tavily API key configured")

// Tavily searches the web through the Tavily search API.
type Tavily struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Compile-time verification that Tavily implements Searcher.
var _ Searcher = (*Tavily)(nil)

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

// Search implements Searcher.
func (s *Tavily) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if s.APIKey == "" {
		return nil, ErrNoTavilyKey
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      s.APIKey,
		Query:       query,
		MaxResults:  ClampCount(count),
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	requestCtx, cancel := s.requestContext(ctx)
	defer cancel()
	endpoint := strings.TrimRight(s.baseURL(), "/") + "/search"
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := gjson.GetBytes(payload, "detail.error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(payload))
		}
		return nil, fmt.Errorf("search: %s: %s", resp.Status, msg)
	}

	var results []Result
	gjson.GetBytes(payload, "results").ForEach(func(_, r gjson.Result) bool {
		results = append(results, Result{
			Title:   r.Get("title").String(),
			URL:     r.Get("url").String(),
			Content: r.Get("content").String(),
		})
		return true
	})
	return results, nil
}

func (s *Tavily) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return DefaultTavilyURL
}

func (s *Tavily) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}

func (s *Tavily) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.RequestTimeout)
}
