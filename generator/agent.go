package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Agent turns each pipeline step into one LLM call and parses the answer.
type Agent struct {
	llm     LLMClient
	catalog Catalog
}

func NewAgent(llm LLMClient, catalog Catalog) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Agent{llm: llm, catalog: catalog}, nil
}

// Catalog returns the category catalog the agent chooses from.
func (a *Agent) Catalog() Catalog { return a.catalog }

func (a *Agent) complete(ctx context.Context, p Prompt, err error) (string, error) {
	if err != nil {
		return "", err
	}
	raw, err := a.llm.Complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", p.Kind, err)
	}
	return raw, nil
}

// SelectCategory asks for a category and validates it against the catalog.
// The boolean is false when the answer matched nothing and the first
// category was used instead.
func (a *Agent) SelectCategory(ctx context.Context, searchResults []string) (string, bool, error) {
	p, err := BuildCategoryPrompt(a.catalog.Names(), searchResults)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return "", false, err
	}
	name, ok := a.catalog.Resolve(raw)
	return name, ok, nil
}

// Title generates the post title.
func (a *Agent) Title(ctx context.Context, req BlogRequest, category string, searchResults []string) (string, error) {
	p, err := BuildTitlePrompt(req, category, searchResults)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return "", err
	}
	title := CleanTitle(raw)
	if title == "" {
		return "", errors.New("model returned an empty title")
	}
	return title, nil
}

// Subheadings generates up to count subheadings.
func (a *Agent) Subheadings(ctx context.Context, title, category string, req BlogRequest, searchResults []string, count int) ([]string, error) {
	p, err := BuildSubheadingPrompt(title, category, req, searchResults, count)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return nil, err
	}
	heads := ParseSubheadings(raw, count)
	if len(heads) == 0 {
		return nil, errors.New("model returned no subheadings")
	}
	return heads, nil
}

// WriteSection generates the body of in.Heading given every earlier section.
func (a *Agent) WriteSection(ctx context.Context, in SectionInput) (string, error) {
	p, err := BuildSectionPrompt(in)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// DecideIllustration reports whether section index (1-based) gets an image.
// Past max the answer is NoImage without asking the model.
func (a *Agent) DecideIllustration(ctx context.Context, text string, index, max int) (Decision, error) {
	if index > max {
		return NoImage, nil
	}
	p, err := BuildIllustrationPrompt(text, index, max)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return NoImage, err
	}
	return ParseDecision(raw), nil
}

// ImagePrompt produces one image description distinct from history.
func (a *Agent) ImagePrompt(ctx context.Context, text string, history []string) (string, error) {
	p, err := BuildImagePromptPrompt(text, history)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return "", err
	}
	prompt := CleanImagePrompt(raw)
	if prompt == "" {
		return "", errors.New("model returned an empty image prompt")
	}
	return prompt, nil
}

// Linkages produces the link-suggestion text appended after the body.
func (a *Agent) Linkages(ctx context.Context, body string, external, internal []string) (string, error) {
	p, err := BuildLinkagePrompt(body, external, internal)
	raw, err := a.complete(ctx, p, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
