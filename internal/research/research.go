// Package research performs web lookups for the production team.
package research

import (
	"context"
	"fmt"
	"strings"
)

// DefaultCount is the number of results requested when none is given.
const DefaultCount = 5

// MaxCount bounds the number of results per lookup.
const MaxCount = 10

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Content string
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, count int) ([]Result, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string, count int) ([]Result, error) {
	return f(ctx, query, count)
}

// ClampCount applies DefaultCount and MaxCount.
func ClampCount(count int) int {
	switch {
	case count <= 0:
		return DefaultCount
	case count > MaxCount:
		return MaxCount
	default:
		return count
	}
}

const maxSnippetChars = 500

// Format renders results as the body of a research event.
func Format(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if snippet := snip(r.Content); snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", snippet)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func snip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxSnippetChars {
		return s
	}
	return string(runes[:maxSnippetChars]) + "..."
}
