package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_pipeline/generator"
	"blog_pipeline/imagegen"
	"blog_pipeline/pipeline"
	"blog_pipeline/search"
)

type downSearcher struct{ search.MockSearcher }

func (downSearcher) Search(context.Context, string, string) ([]search.Result, error) {
	return nil, &search.StatusError{Code: 500, Body: "upstream down"}
}

type brokenLLM struct{}

func (brokenLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestServer(t *testing.T, llm generator.LLMClient, searcher search.Searcher, workDir string) *Server {
	t.Helper()
	agent, err := generator.NewAgent(llm, nil)
	require.NoError(t, err)
	p, err := pipeline.New(pipeline.Options{
		Agent:       agent,
		Searcher:    searcher,
		Images:      imagegen.MockFetcher{},
		Logger:      log.New(io.Discard, "", 0),
		MaxImages:   3,
		Subheadings: 2,
		WorkDir:     workDir,
		Site:        "example.com",
	})
	require.NoError(t, err)
	srv, err := New(p, nil, false, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"TypeOf":"How-to","target_audience":"new parents","tone":"Casual","point_of_view":"second person","target_country":"United States","keywords":["sleep schedules"]}`

func TestPipelineReturnsDocx(t *testing.T) {
	dir := t.TempDir()
	h := newTestServer(t, generator.MockLLM{}, search.MockSearcher{}, dir).Routes()

	for _, path := range []string{"/blogs/pipeline/", "/blogs/pipeline"} {
		rec := postJSON(t, h, path, validBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Generated_Blog_Post.docx"`, rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspaces are removed after the response")
}

func TestPipelineFormatOverride(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{}, search.MockSearcher{}, t.TempDir()).Routes()

	body := strings.Replace(validBody, `}`, `,"format":"html"}`, 1)
	rec := postJSON(t, h, "/blogs/pipeline/", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), pipeline.LinksHeading)
}

func TestPipelineBadRequests(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{}, search.MockSearcher{}, t.TempDir()).Routes()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"keywords":`},
		{"no keywords", `{"tone":"Casual","keywords":[]}`},
		{"blank keywords", `{"keywords":["  "]}`},
		{"unknown format", `{"keywords":["naps"],"format":"odt"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/blogs/pipeline/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestPipelineSearchFailureIsBadGateway(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{}, downSearcher{}, t.TempDir()).Routes()

	rec := postJSON(t, h, "/blogs/pipeline/", validBody)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(pipeline.StageSearch), resp.Stage)
	assert.Contains(t, resp.Error, "upstream down")
}

func TestPipelineModelFailureIsInternal(t *testing.T) {
	h := newTestServer(t, brokenLLM{}, search.MockSearcher{}, t.TempDir()).Routes()

	rec := postJSON(t, h, "/blogs/pipeline/", validBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(pipeline.StageCategory), resp.Stage)
}

func TestHealthAndCategories(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{}, search.MockSearcher{}, t.TempDir()).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []generator.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Len(t, cats, 35)
	assert.Equal(t, "Parenting Stages", cats[0].Name)
}

func TestPipelineRejectsGet(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{}, search.MockSearcher{}, t.TempDir()).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blogs/pipeline/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestClassify(t *testing.T) {
	status, _ := classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)

	status, resp := classify(&pipeline.StageError{Stage: pipeline.StageRender, Err: errors.New("disk full")})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "render", resp.Stage)

	status, _ = classify(&pipeline.StageError{Stage: pipeline.StageSearch, Err: errors.New("timeout")})
	assert.Equal(t, http.StatusBadGateway, status)
}
