package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const organicBody = `{"results":[{"content":{"results":{"organic":[
	{"pos":1,"title":"Baby sleep schedules by age","url":"https://a.example/1"},
	{"pos":2,"title":"","url":"https://a.example/empty"},
	{"pos":3,"title":"Toddler nap guide","url":"https://a.example/3"}
]}}}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := NewClient(Settings{Username: "u", Password: "p", BaseURL: ts.URL}, ts.Client())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Settings{}, nil)
	assert.Error(t, err)
}

func TestSearchSendsPayloadAndParses(t *testing.T) {
	var got queryPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(organicBody))
	})

	results, err := c.Search(context.Background(), "sleep schedules", "US")
	require.NoError(t, err)

	assert.Equal(t, "google_search", got.Source)
	assert.Equal(t, "sleep schedules", got.Query)
	assert.Equal(t, "US", got.GeoLocation)
	assert.Equal(t, "en-us", got.Locale)
	assert.True(t, got.Parse)

	require.Len(t, results, 2)
	assert.Equal(t, Result{Keyword: "sleep schedules", Position: 1, Title: "Baby sleep schedules by age", URL: "https://a.example/1"}, results[0])
	assert.Equal(t, 3, results[1].Position)
}

func TestSearchNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), "naps", "US")
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, err.Error(), "bad credentials")
	assert.Contains(t, err.Error(), `"naps"`)
}

func TestSearchBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	})
	_, err := c.Search(context.Background(), "naps", "US")
	assert.Error(t, err)
}

func TestSiteSearch(t *testing.T) {
	var got queryPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(organicBody))
	})

	results, err := c.SiteSearch(context.Background(), "blog.example", []string{"sleep", "naps"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "google", got.Source)

	u, err := url.Parse(got.URL)
	require.NoError(t, err)
	assert.Equal(t, "site:blog.example sleep naps", u.Query().Get("q"))
}

func TestFetchContextStopsOnError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(organicBody))
	})

	_, err := FetchContext(context.Background(), c, []string{"a", "b", "c"}, "US")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchContextAggregatesInOrder(t *testing.T) {
	results, err := FetchContext(context.Background(), MockSearcher{}, []string{"naps", "bedtime"}, "US")
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "naps", results[0].Keyword)
	assert.Equal(t, "bedtime", results[2].Keyword)
}

func TestFormatters(t *testing.T) {
	rs := []Result{
		{Position: 1, Title: "One", URL: "https://x/1"},
		{Position: 7, Title: "Seven"},
	}
	assert.Equal(t, []string{"Position 1: One", "Position 7: Seven"}, FormatContext(rs))
	assert.Equal(t, []string{"One - https://x/1", "Seven"}, FormatLinks(rs))
	assert.True(t, strings.HasPrefix(SiteSearchURL("s.example", nil), "https://www.google.com/search?q=site%3As.example"))
}
