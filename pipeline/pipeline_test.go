package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_pipeline/document"
	"blog_pipeline/generator"
	"blog_pipeline/imagegen"
	"blog_pipeline/search"
)

// stubLLM answers like generator.MockLLM unless a kind is overridden, and
// records every prompt.
type stubLLM struct {
	mu      sync.Mutex
	answers map[generator.PromptKind]string
	fail    map[generator.PromptKind]error
	prompts []generator.Prompt
}

func (s *stubLLM) Complete(ctx context.Context, p generator.Prompt) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()
	if err := s.fail[p.Kind]; err != nil {
		return "", err
	}
	if a, ok := s.answers[p.Kind]; ok {
		return a, nil
	}
	return generator.MockLLM{}.Complete(ctx, p)
}

func (s *stubLLM) ofKind(k generator.PromptKind) []generator.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []generator.Prompt
	for _, p := range s.prompts {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) (imagegen.Image, error) {
	return imagegen.Image{}, &imagegen.StatusError{Code: 503, Body: "model loading"}
}

type failingSearcher struct {
	search.MockSearcher
	failSearch bool
	failSite   bool
}

func (f failingSearcher) Search(ctx context.Context, keyword, country string) ([]search.Result, error) {
	if f.failSearch {
		return nil, &search.StatusError{Code: 401, Body: "bad credentials"}
	}
	return f.MockSearcher.Search(ctx, keyword, country)
}

func (f failingSearcher) SiteSearch(ctx context.Context, site string, keywords []string) ([]search.Result, error) {
	if f.failSite {
		return nil, errors.New("site search down")
	}
	return f.MockSearcher.SiteSearch(ctx, site, keywords)
}

func newTestPipeline(t *testing.T, llm generator.LLMClient, opts Options) *Pipeline {
	t.Helper()
	agent, err := generator.NewAgent(llm, nil)
	require.NoError(t, err)
	opts.Agent = agent
	if opts.Searcher == nil {
		opts.Searcher = search.MockSearcher{}
	}
	if opts.Images == nil {
		opts.Images = imagegen.MockFetcher{}
	}
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	opts.Logger = log.New(io.Discard, "", 0)
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

var sleepRequest = generator.BlogRequest{
	ContentType:    "How-to",
	TargetAudience: "new parents",
	Tone:           "Casual",
	PointOfView:    "second person",
	TargetCountry:  "United States",
	Keywords:       []string{"sleep schedules"},
}

func TestRunProducesDocument(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{MaxImages: 3, Subheadings: 3, Site: "example.com"})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, "Generated_Blog_Post.docx", res.Filename)
	assert.Equal(t, document.FormatDOCX, res.Format)
	assert.NotEmpty(t, res.Draft.Title)
	assert.Equal(t, "Everyday Life with Kids", res.Draft.Category)
	require.Len(t, res.Draft.Sections, 3)

	doc := res.Document
	require.NotEmpty(t, doc.Nodes)
	assert.Equal(t, document.KindTitle, doc.Nodes[0].Kind)
	assert.Equal(t, res.Draft.Title, doc.Nodes[0].Text)
	assert.GreaterOrEqual(t, doc.Count(document.KindHeading), 1)

	linksAt, lastSection := -1, -1
	for i, n := range doc.Nodes {
		if n.Kind != document.KindHeading {
			continue
		}
		if n.Text == LinksHeading {
			linksAt = i
		}
		for _, s := range res.Draft.Sections {
			if n.Text == s.Heading {
				lastSection = i
			}
		}
	}
	require.NotEqual(t, -1, linksAt)
	assert.Greater(t, linksAt, lastSection)

	for _, n := range doc.Nodes {
		if n.Kind != document.KindImage {
			assert.Equal(t, document.Black, n.Color)
		}
	}

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PK"))
}

func TestRunSectionsSeeAllEarlierText(t *testing.T) {
	llm := &stubLLM{}
	p := newTestPipeline(t, llm, Options{MaxImages: 3, Subheadings: 3})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	defer res.Close()

	prompts := llm.ofKind(generator.KindSection)
	require.Len(t, prompts, 3)
	for k, prompt := range prompts {
		want := "Previous content:\n" + generator.PreviousContent(res.Draft.Sections[:k]) + "\n\nSubheading: " + res.Draft.Sections[k].Heading
		assert.Contains(t, prompt.User, want, "section %d", k+1)
	}
}

func TestRunImageCapHolds(t *testing.T) {
	llm := &stubLLM{answers: map[generator.PromptKind]string{
		generator.KindSubheadings: "One\nTwo\nThree\nFour\nFive",
		generator.KindIllustrate:  "Yes",
	}}
	p := newTestPipeline(t, llm, Options{MaxImages: 3, Subheadings: 5})

	res, err := p.Run(context.Background(), sleepRequest, document.FormatPDF)
	require.NoError(t, err)
	defer res.Close()

	require.Len(t, res.Draft.Sections, 5)
	withImage := 0
	for _, s := range res.Draft.Sections {
		if s.ImagePath != "" {
			withImage++
		}
	}
	assert.Equal(t, 3, withImage)
	assert.Len(t, llm.ofKind(generator.KindIllustrate), 3)
	// cover plus three sections
	assert.Equal(t, 4, res.Document.Count(document.KindImage))
	assert.Len(t, res.Draft.ImagePrompts, 4)
}

func TestRunCapByIndexSkipsModel(t *testing.T) {
	llm := &stubLLM{answers: map[generator.PromptKind]string{
		generator.KindSubheadings: "One\nTwo\nThree\nFour",
		generator.KindIllustrate:  "No",
	}}
	p := newTestPipeline(t, llm, Options{MaxImages: 2, Subheadings: 4})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	defer res.Close()

	assert.Len(t, llm.ofKind(generator.KindIllustrate), 2)
	assert.Equal(t, 1, res.Document.Count(document.KindImage))
}

func TestRunSurvivesImageFailures(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{MaxImages: 3, Subheadings: 3, Images: failingFetcher{}})

	res, err := p.Run(context.Background(), sleepRequest, document.FormatHTML)
	require.NoError(t, err)
	defer res.Close()

	require.Len(t, res.Draft.Sections, 3)
	assert.Zero(t, res.Document.Count(document.KindImage))
	for _, s := range res.Draft.Sections {
		assert.Empty(t, s.ImagePath)
		assertSectionInDocument(t, res.Document, s)
	}
	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

// assertSectionInDocument checks that s has a heading node followed by a
// paragraph taken from its body.
func assertSectionInDocument(t *testing.T, doc *document.Document, s generator.Section) {
	t.Helper()
	for i, n := range doc.Nodes {
		if n.Kind != document.KindHeading || n.Text != s.Heading {
			continue
		}
		require.Less(t, i+1, len(doc.Nodes), "heading %q is the last node", s.Heading)
		next := doc.Nodes[i+1]
		assert.Equal(t, document.KindParagraph, next.Kind, "node after %q", s.Heading)
		assert.NotEmpty(t, next.Text)
		assert.Contains(t, s.Body, next.Text)
		return
	}
	t.Errorf("no heading %q in document", s.Heading)
}

func TestRunNormalizesFormat(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{})

	res, err := p.Run(context.Background(), sleepRequest, "PDF")
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, document.FormatPDF, res.Format)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, "Generated_Blog_Post.pdf", res.Filename)
	assert.True(t, strings.HasSuffix(res.Path, ".pdf"))
}

func TestRunSearchFailureIsStageError(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, &stubLLM{}, Options{Searcher: failingSearcher{failSearch: true}, WorkDir: dir})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.Error(t, err)
	assert.Nil(t, res)

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageSearch, stage)
	var se *search.StatusError
	assert.True(t, errors.As(err, &se))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace must be removed on failure")
}

func TestRunLLMFailureNamesStage(t *testing.T) {
	llm := &stubLLM{fail: map[generator.PromptKind]error{generator.KindSection: errors.New("rate limited")}}
	p := newTestPipeline(t, llm, Options{})

	_, err := p.Run(context.Background(), sleepRequest, "")
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageSection, stage)
}

func TestRunSiteSearchFailureIsNotFatal(t *testing.T) {
	llm := &stubLLM{}
	p := newTestPipeline(t, llm, Options{Searcher: failingSearcher{failSite: true}, Site: "example.com"})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	defer res.Close()

	links := llm.ofKind(generator.KindLinkage)
	require.Len(t, links, 1)
	assert.Contains(t, links[0].User, "Internal link results:\n(none)")
}

func TestRunCategoryFallsBackToFirst(t *testing.T) {
	llm := &stubLLM{answers: map[generator.PromptKind]string{generator.KindCategory: "Cooking"}}
	p := newTestPipeline(t, llm, Options{})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	defer res.Close()
	assert.Equal(t, "Parenting Stages", res.Draft.Category)
}

func TestRunRejectsBadInput(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{})

	_, err := p.Run(context.Background(), generator.BlogRequest{Keywords: []string{"  "}}, "")
	assert.ErrorIs(t, err, generator.ErrInvalidRequest)

	_, err = p.Run(context.Background(), sleepRequest, "odt")
	assert.ErrorIs(t, err, generator.ErrInvalidRequest)
}

func TestResultCloseRemovesWorkspace(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{})

	res, err := p.Run(context.Background(), sleepRequest, "")
	require.NoError(t, err)
	require.NoError(t, res.Close())

	_, err = os.Stat(res.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestConcurrentRunsUseSeparateWorkspaces(t *testing.T) {
	p := newTestPipeline(t, &stubLLM{}, Options{})

	var wg sync.WaitGroup
	paths := make([]string, 4)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Run(context.Background(), sleepRequest, "")
			if assert.NoError(t, err) {
				paths[i] = res.Path
				t.Cleanup(func() { res.Close() })
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, path := range paths {
		assert.False(t, seen[path], path)
		seen[path] = true
	}
}
