// Package pipeline drives one blog generation run from keywords to a saved
// document: search, category, title, subheadings, one section at a time,
// link suggestions and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"blog_pipeline/document"
	"blog_pipeline/generator"
	"blog_pipeline/imagegen"
	"blog_pipeline/search"
)

const (
	// PictureWidthIn is the width every picture is placed at.
	PictureWidthIn = 6.0
	// LinksHeading precedes the link suggestions.
	LinksHeading = "Related Links"

	defaultMaxImages   = 3
	defaultSubheadings = 1
)

// Options wires the collaborators and tuning of a Pipeline.
type Options struct {
	Agent    *generator.Agent
	Searcher search.Searcher
	Images   imagegen.Fetcher
	Logger   *log.Logger
	Verbose  bool

	// MaxImages caps section pictures; the cover is not counted.
	MaxImages int
	// Subheadings is how many sections are written.
	Subheadings int
	Format      document.Format
	WorkDir     string
	// Site is searched for internal links; empty skips that search.
	Site string
}

// Pipeline runs generation requests. It holds no per-run state, so one
// value serves concurrent requests.
type Pipeline struct {
	agent       *generator.Agent
	searcher    search.Searcher
	images      imagegen.Fetcher
	logger      *log.Logger
	verbose     bool
	maxImages   int
	subheadings int
	format      document.Format
	workDir     string
	site        string
}

func New(opts Options) (*Pipeline, error) {
	if opts.Agent == nil {
		return nil, errors.New("generator agent required")
	}
	if opts.Searcher == nil {
		return nil, errors.New("searcher required")
	}
	if opts.Images == nil {
		return nil, errors.New("image fetcher required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxImages < 0 {
		opts.MaxImages = defaultMaxImages
	}
	if opts.Subheadings < 1 {
		opts.Subheadings = defaultSubheadings
	}
	if opts.Format == "" {
		opts.Format = document.FormatDOCX
	}
	return &Pipeline{
		agent:       opts.Agent,
		searcher:    opts.Searcher,
		images:      opts.Images,
		logger:      opts.Logger,
		verbose:     opts.Verbose,
		maxImages:   opts.MaxImages,
		subheadings: opts.Subheadings,
		format:      opts.Format,
		workDir:     opts.WorkDir,
		site:        opts.Site,
	}, nil
}

func (p *Pipeline) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// Result is a finished run. The document lives in the run's workspace
// until Close is called.
type Result struct {
	Path        string
	Filename    string
	ContentType string
	Format      document.Format
	Draft       generator.Draft
	Document    *document.Document

	workspace *Workspace
}

// Open opens the rendered document for reading.
func (r *Result) Open() (io.ReadCloser, error) {
	return os.Open(r.Path)
}

// Close removes the workspace holding the document and its images.
func (r *Result) Close() error {
	if r == nil || r.workspace == nil {
		return nil
	}
	return r.workspace.Close()
}

// run is the state of one generation; it never outlives Run.
type run struct {
	*Pipeline
	ws    *Workspace
	req   generator.BlogRequest
	doc   *document.Document
	draft generator.Draft
	serp  []string
}

func (r *run) logf(format string, args ...interface{}) {
	r.logger.Printf("[pipeline] %s "+format, append([]interface{}{r.ws.ShortID()}, args...)...)
}

func (r *run) infof(format string, args ...interface{}) {
	r.Pipeline.infof("[pipeline] %s "+format, append([]interface{}{r.ws.ShortID()}, args...)...)
}

// Run generates one blog post and renders it in format (the pipeline
// default when empty). On error nothing is left on disk.
func (p *Pipeline) Run(ctx context.Context, req generator.BlogRequest, format document.Format) (res *Result, err error) {
	req, err = req.Validate()
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = p.format
	}
	parsed, err := document.ParseFormat(string(format))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrInvalidRequest, err)
	}
	format = parsed

	ws, err := NewWorkspace(p.workDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if cerr := ws.Close(); cerr != nil {
				p.logger.Printf("[pipeline] %s cleanup failed: %v", ws.ShortID(), cerr)
			}
		}
	}()

	r := &run{Pipeline: p, ws: ws, req: req, doc: document.New()}
	r.logf("start keywords=%q format=%s", req.Keywords, format)

	results, err := search.FetchContext(ctx, p.searcher, req.Keywords, req.TargetCountry)
	if err != nil {
		return nil, fail(StageSearch, err)
	}
	r.serp = search.FormatContext(results)
	r.infof("search returned %d results", len(results))

	category, matched, err := p.agent.SelectCategory(ctx, r.serp)
	if err != nil {
		return nil, fail(StageCategory, err)
	}
	if !matched {
		r.logf("category answer not in catalog, using %q", category)
	}
	r.draft.Category = category
	r.infof("category=%q", category)

	title, err := p.agent.Title(ctx, req, category, r.serp)
	if err != nil {
		return nil, fail(StageTitle, err)
	}
	r.draft.Title = title
	r.doc.AddTitle(title)
	r.infof("title=%q", title)

	r.cover(ctx)

	heads, err := p.agent.Subheadings(ctx, title, category, req, r.serp, p.subheadings)
	if err != nil {
		return nil, fail(StageSubheadings, err)
	}
	r.infof("subheadings=%q", heads)

	if err := r.sections(ctx, heads); err != nil {
		return nil, err
	}
	if err := r.links(ctx, results); err != nil {
		return nil, err
	}

	path := ws.DocumentPath(format)
	if err := writeDocument(path, format, r.doc); err != nil {
		return nil, fail(StageRender, err)
	}
	r.logf("done sections=%d images=%d path=%s", len(r.draft.Sections), r.doc.Count(document.KindImage), path)

	return &Result{
		Path:        path,
		Filename:    DocumentName + format.Ext(),
		ContentType: format.ContentType(),
		Format:      format,
		Draft:       r.draft,
		Document:    r.doc,
		workspace:   ws,
	}, nil
}

// cover places an image under the title. Any failure only costs the cover.
func (r *run) cover(ctx context.Context) {
	prompt, err := r.agent.ImagePrompt(ctx, r.draft.Title, r.draft.ImagePrompts)
	if err != nil {
		r.logf("cover prompt failed, continuing without cover: %v", err)
		return
	}
	r.draft = r.draft.WithImagePrompt(prompt)
	path, ok := r.fetchImage(ctx, prompt, "cover")
	if ok {
		r.addPicture(path)
	}
}

// sections writes every subheading in order. Each one sees all the text
// generated before it and nothing after.
func (r *run) sections(ctx context.Context, heads []string) error {
	sectionImages := 0
	for i, heading := range heads {
		index := i + 1
		body, err := r.agent.WriteSection(ctx, generator.SectionInput{
			Title:         r.draft.Title,
			Category:      r.draft.Category,
			Heading:       heading,
			Request:       r.req,
			SearchResults: r.serp,
			Previous:      r.draft.Sections,
		})
		if err != nil {
			return fail(StageSection, fmt.Errorf("section %d %q: %w", index, heading, err))
		}
		section := generator.Section{Heading: heading, Body: body}
		document.AppendSection(r.doc, heading, body)
		r.infof("section %d/%d %q written (%d chars)", index, len(heads), heading, len(body))

		if sectionImages < r.maxImages {
			decision, err := r.agent.DecideIllustration(ctx, body, index, r.maxImages)
			if err != nil {
				return fail(StageIllustration, fmt.Errorf("section %d: %w", index, err))
			}
			r.infof("section %d illustration=%s", index, decision)
			if decision == generator.AddImage {
				prompt, err := r.agent.ImagePrompt(ctx, body, r.draft.ImagePrompts)
				if err != nil {
					return fail(StageImagePrompt, fmt.Errorf("section %d: %w", index, err))
				}
				r.draft = r.draft.WithImagePrompt(prompt)
				if path, ok := r.fetchImage(ctx, prompt, fmt.Sprintf("section-%d", index)); ok {
					r.addPicture(path)
					section.ImagePath = path
					sectionImages++
				}
			}
		}
		r.draft = r.draft.WithSection(section)
	}
	return nil
}

// fetchImage asks the image service for prompt and stores the result in the
// workspace. Failures are logged and reported as !ok.
func (r *run) fetchImage(ctx context.Context, prompt, name string) (string, bool) {
	img, err := r.images.Fetch(ctx, prompt)
	if err != nil {
		r.logger.Printf("[image] %s %s failed, continuing without it: %v", r.ws.ShortID(), name, err)
		return "", false
	}
	path, err := imagegen.Save(r.ws.ImagesDir, name, img)
	if err != nil {
		r.logger.Printf("[image] %s %s could not be saved: %v", r.ws.ShortID(), name, err)
		return "", false
	}
	r.infof("%s image %dx%d saved to %s", name, img.Width, img.Height, path)
	return path, true
}

func (r *run) addPicture(path string) {
	img, err := imagegen.Load(path)
	height := PictureWidthIn
	if err == nil && img.Width > 0 {
		height = PictureWidthIn * float64(img.Height) / float64(img.Width)
	}
	r.doc.AddPicture(path, PictureWidthIn, height)
}

// links asks for external and internal link suggestions and appends them.
// The internal site search is best effort.
func (r *run) links(ctx context.Context, results []search.Result) error {
	var internal []search.Result
	if r.site != "" {
		found, err := r.searcher.SiteSearch(ctx, r.site, r.req.Keywords)
		if err != nil {
			r.logf("site search on %s failed, no internal links: %v", r.site, err)
		} else {
			internal = found
		}
	}
	text, err := r.agent.Linkages(ctx, r.draft.Body(), search.FormatLinks(results), search.FormatLinks(internal))
	if err != nil {
		return fail(StageLinks, err)
	}
	r.doc.AddHeading(LinksHeading, 2)
	document.AppendText(r.doc, text)
	r.infof("links appended (%d external, %d internal candidates)", len(results), len(internal))
	return nil
}

func writeDocument(path string, format document.Format, doc *document.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := document.Render(format, doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
