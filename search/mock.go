package search

import (
	"context"
	"fmt"
)

// MockSearcher returns canned results without touching the network.
type MockSearcher struct{}

func (MockSearcher) Search(_ context.Context, keyword, _ string) ([]Result, error) {
	return []Result{
		{Keyword: keyword, Position: 1, Title: fmt.Sprintf("The complete guide to %s", keyword), URL: "https://example.com/guide"},
		{Keyword: keyword, Position: 2, Title: fmt.Sprintf("%s: what experts recommend", keyword), URL: "https://example.org/experts"},
	}, nil
}

func (MockSearcher) SiteSearch(_ context.Context, site string, _ []string) ([]Result, error) {
	return []Result{{Position: 1, Title: "Related reading", URL: "https://" + site + "/related"}}, nil
}
