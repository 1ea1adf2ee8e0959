// Package search fetches organic search results used as SEO context and as
// link candidates.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://realtime.oxylabs.io/v1/queries"

// Result is one organic listing.
type Result struct {
	Keyword  string `json:"keyword,omitempty"`
	Position int    `json:"pos"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// Searcher is the search collaborator as seen by the pipeline.
type Searcher interface {
	Search(ctx context.Context, keyword, country string) ([]Result, error)
	SiteSearch(ctx context.Context, site string, keywords []string) ([]Result, error)
}

// Settings configures the realtime SERP client.
type Settings struct {
	Username string
	Password string
	BaseURL  string
	Domain   string
	Locale   string
}

// Client talks to the Oxylabs realtime API with basic auth.
type Client struct {
	cfg    Settings
	client *http.Client
}

func NewClient(cfg Settings, client *http.Client) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("search username and password are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Domain == "" {
		cfg.Domain = "com"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-us"
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{cfg: cfg, client: client}, nil
}

type contextParam struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type queryPayload struct {
	Source      string         `json:"source"`
	Query       string         `json:"query,omitempty"`
	URL         string         `json:"url,omitempty"`
	Domain      string         `json:"domain,omitempty"`
	GeoLocation string         `json:"geo_location,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	StartPage   int            `json:"start_page,omitempty"`
	Pages       int            `json:"pages,omitempty"`
	Parse       bool           `json:"parse"`
	Context     []contextParam `json:"context,omitempty"`
}

type queryResp struct {
	Results []struct {
		Content struct {
			Results struct {
				Organic []Result `json:"organic"`
			} `json:"results"`
		} `json:"content"`
	} `json:"results"`
}

// Search returns the first page of organic results for keyword in country.
func (c *Client) Search(ctx context.Context, keyword, country string) ([]Result, error) {
	payload := queryPayload{
		Source:      "google_search",
		Query:       keyword,
		Domain:      c.cfg.Domain,
		GeoLocation: country,
		Locale:      c.cfg.Locale,
		StartPage:   1,
		Pages:       1,
		Parse:       true,
		Context: []contextParam{
			{Key: "filter", Value: 1},
			{Key: "results_language", Value: "en"},
		},
	}
	results, err := c.do(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	for i := range results {
		results[i].Keyword = keyword
	}
	return results, nil
}

// SiteSearch restricts a Google query to site, e.g. for internal links.
func (c *Client) SiteSearch(ctx context.Context, site string, keywords []string) ([]Result, error) {
	payload := queryPayload{
		Source: "google",
		URL:    SiteSearchURL(site, keywords),
		Parse:  true,
	}
	results, err := c.do(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("site search %s: %w", site, err)
	}
	return results, nil
}

// SiteSearchURL builds the Google URL for a site-restricted query.
func SiteSearchURL(site string, keywords []string) string {
	terms := append([]string{"site:" + site}, keywords...)
	q := url.Values{}
	q.Set("q", strings.Join(terms, " "))
	return "https://www.google.com/search?" + q.Encode()
}

func (c *Client) do(ctx context.Context, payload queryPayload) ([]Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(preview))}
	}

	var data queryResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	var out []Result
	for _, r := range data.Results {
		for _, o := range r.Content.Results.Organic {
			if o.Title == "" {
				continue
			}
			out = append(out, o)
		}
	}
	return out, nil
}

// StatusError is a non-2xx answer from the search API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("search api returned status %d", e.Code)
	}
	return fmt.Sprintf("search api returned status %d: %s", e.Code, e.Body)
}

// FetchContext searches every keyword in order and fails on the first error.
func FetchContext(ctx context.Context, s Searcher, keywords []string, country string) ([]Result, error) {
	var all []Result
	for _, kw := range keywords {
		results, err := s.Search(ctx, kw, country)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// FormatContext renders results as "Position N: title" lines.
func FormatContext(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, fmt.Sprintf("Position %d: %s", r.Position, r.Title))
	}
	return out
}

// FormatLinks renders results as "title - url" lines for link suggestions.
func FormatLinks(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			out = append(out, r.Title)
			continue
		}
		out = append(out, fmt.Sprintf("%s - %s", r.Title, r.URL))
	}
	return out
}
