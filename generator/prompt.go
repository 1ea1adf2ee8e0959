package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField marks a prompt builder called without a required input.
var ErrMissingField = errors.New("missing required prompt field")

// PromptKind names the role a prompt plays in the pipeline.
type PromptKind string

const (
	KindCategory    PromptKind = "category"
	KindTitle       PromptKind = "title"
	KindSubheadings PromptKind = "subheadings"
	KindSection     PromptKind = "section"
	KindIllustrate  PromptKind = "illustrate"
	KindImagePrompt PromptKind = "image_prompt"
	KindLinkage     PromptKind = "linkage"
)

// Prompt is the message pair sent to the LLM: System sets the role, User
// carries the inputs and rules of this step.
type Prompt struct {
	Kind   PromptKind
	System string
	User   string
}

func missing(kind PromptKind, field string) error {
	return fmt.Errorf("%s prompt: %s: %w", kind, field, ErrMissingField)
}

// BuildCategoryPrompt asks the model to pick one catalog category.
func BuildCategoryPrompt(categories []string, searchResults []string) (Prompt, error) {
	if len(categories) == 0 {
		return Prompt{}, missing(KindCategory, "categories")
	}
	system := "You classify blog topics into a fixed list of categories."
	var sb strings.Builder
	sb.WriteString("Pick the single category that best fits a blog post about the search results below.\n\n")
	fmt.Fprintf(&sb, "Categories: %s\n\n", strings.Join(categories, ", "))
	sb.WriteString("Search results:\n")
	sb.WriteString(strings.Join(searchResults, "\n"))
	sb.WriteString("\n\nRead the keywords and context of the results before choosing. ")
	sb.WriteString("Reply with the category name only, exactly as listed.")
	return Prompt{Kind: KindCategory, System: system, User: sb.String()}, nil
}

// BuildTitlePrompt asks for one SEO title.
func BuildTitlePrompt(req BlogRequest, category string, searchResults []string) (Prompt, error) {
	if len(req.Keywords) == 0 {
		return Prompt{}, missing(KindTitle, "keywords")
	}
	if category == "" {
		return Prompt{}, missing(KindTitle, "category")
	}
	system := "You write SEO-optimized blog titles."
	var sb strings.Builder
	sb.WriteString("Produce one title that uses the keywords below.\n\n")
	fmt.Fprintf(&sb, "Category: %s\n", category)
	fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(req.Keywords, ", "))
	if len(searchResults) > 0 {
		fmt.Fprintf(&sb, "Competing titles:\n%s\n", strings.Join(searchResults, "\n"))
	}
	sb.WriteString("\nRules:\n")
	if req.ContentType != "" {
		fmt.Fprintf(&sb, "- The post is a %q style article.\n", req.ContentType)
	}
	sb.WriteString("- Concise, catchy and accurate; under 60 characters when clarity allows.\n")
	fmt.Fprintf(&sb, "- Positive and inviting for readers interested in %s.\n", category)
	sb.WriteString("- Reply with the title only.\n")
	return Prompt{Kind: KindTitle, System: system, User: sb.String()}, nil
}

// BuildSubheadingPrompt asks for count subheadings, one per line.
func BuildSubheadingPrompt(title, category string, req BlogRequest, searchResults []string, count int) (Prompt, error) {
	if title == "" {
		return Prompt{}, missing(KindSubheadings, "title")
	}
	if count < 1 {
		count = 1
	}
	system := "You plan SEO-friendly blog structure."
	var sb strings.Builder
	sb.WriteString("Suggest subheadings that support the title and suit the audience.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Category: %s\n", category)
	fmt.Fprintf(&sb, "SEO keywords: %s\n", strings.Join(searchResults, ", "))
	writeAudience(&sb, req)
	sb.WriteString("\nRules:\n")
	fmt.Fprintf(&sb, "- Write exactly %d subheading(s), one per line.\n", count)
	sb.WriteString("- Match the tone and point of view; stay close to the title and keywords.\n")
	sb.WriteString("- Helpful tips, key facts and region-specific angles are welcome.\n")
	sb.WriteString("- Order them so the post flows from one to the next.\n")
	sb.WriteString("- Reply with the subheadings only: no numbering, no commentary.\n")
	return Prompt{Kind: KindSubheadings, System: system, User: sb.String()}, nil
}

// SectionInput carries everything one section generation needs.
// Previous holds every section generated so far, in order.
type SectionInput struct {
	Title         string
	Category      string
	Heading       string
	Request       BlogRequest
	SearchResults []string
	Previous      []Section
}

// BuildSectionPrompt asks for the body of one subheading, with all earlier
// sections included so the text continues where the last one stopped.
func BuildSectionPrompt(in SectionInput) (Prompt, error) {
	if in.Title == "" {
		return Prompt{}, missing(KindSection, "title")
	}
	if in.Heading == "" {
		return Prompt{}, missing(KindSection, "heading")
	}
	system := fmt.Sprintf("You draft professional blog posts in the category %s.", in.Category)
	var sb strings.Builder
	sb.WriteString("Write a unique, factual and engaging section for the subheading below, at most 2-3 paragraphs, ")
	sb.WriteString("using the keywords so it stays SEO-friendly.\n\n")
	fmt.Fprintf(&sb, "Category: %s\n", in.Category)
	fmt.Fprintf(&sb, "Title: %s\n", in.Title)
	fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(in.SearchResults, ", "))
	writeAudience(&sb, in.Request)
	fmt.Fprintf(&sb, "\nPrevious content:\n%s\n\n", PreviousContent(in.Previous))
	fmt.Fprintf(&sb, "Subheading: %s\n", in.Heading)
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Continue naturally from the previous content and lead into what comes next.\n")
	sb.WriteString("- Include data, research or expert opinion where relevant; give practical tips.\n")
	sb.WriteString("- Stay on topic. No conclusion and no FAQ.\n")
	sb.WriteString("- Wrap headings and sub headings in ** and use ** nowhere else.\n")
	sb.WriteString("- Number list items instead of using ** on them; never number headings.\n")
	return Prompt{Kind: KindSection, System: system, User: sb.String()}, nil
}

// BuildIllustrationPrompt asks whether section index (1-based) deserves a picture.
func BuildIllustrationPrompt(text string, index, max int) (Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return Prompt{}, missing(KindIllustrate, "text")
	}
	system := "You are a blog editor who decides where illustrations help readers."
	var sb strings.Builder
	sb.WriteString("Decide whether the blog section below should get an illustration. ")
	sb.WriteString("Say Yes only when the content is rich and an image would clearly help the reader. ")
	fmt.Fprintf(&sb, "At most %d images are allowed: this is section %d, so if %d > %d answer No.\n\n", max, index, index, max)
	fmt.Fprintf(&sb, "Section:\n%s\n\n", text)
	sb.WriteString("Answer with exactly one word: Yes or No.")
	return Prompt{Kind: KindIllustrate, System: system, User: sb.String()}, nil
}

// BuildImagePromptPrompt asks for one image description that differs from history.
func BuildImagePromptPrompt(text string, history []string) (Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return Prompt{}, missing(KindImagePrompt, "text")
	}
	system := "You write prompts for an image generator to illustrate a family and parenting blog."
	var sb strings.Builder
	fmt.Fprintf(&sb, "Blog text:\n%s\n\n", text)
	sb.WriteString("Previous image prompts:\n")
	if len(history) == 0 {
		sb.WriteString("(none)\n")
	} else {
		for _, h := range history {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
	}
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Find the most visual key point of the text and describe one scene for it.\n")
	sb.WriteString("- Mention style, setting, objects and mood; keep it short.\n")
	sb.WriteString("- The image must not contain any written text.\n")
	sb.WriteString("- It must differ from every previous prompt.\n")
	sb.WriteString("- Reply with exactly one prompt and nothing else.\n")
	return Prompt{Kind: KindImagePrompt, System: system, User: sb.String()}, nil
}

// BuildLinkagePrompt asks for external and internal link suggestions.
func BuildLinkagePrompt(body string, external, internal []string) (Prompt, error) {
	if strings.TrimSpace(body) == "" {
		return Prompt{}, missing(KindLinkage, "body")
	}
	system := "You are an SEO editor who suggests supporting links for blog posts."
	var sb strings.Builder
	sb.WriteString("Suggest external and internal links for the blog post below.\n\n")
	fmt.Fprintf(&sb, "Blog post:\n%s\n\n", body)
	sb.WriteString("External link results:\n")
	writeList(&sb, external)
	sb.WriteString("\nInternal link results:\n")
	writeList(&sb, internal)
	sb.WriteString("\nRules:\n")
	sb.WriteString("- External Links: up to 3 of the best results above, each with a one-line summary of why it helps.\n")
	sb.WriteString("- Internal Links: up to 3 internal pages from the internal results, each with a one-line explanation.\n")
	sb.WriteString("- Leave a group out entirely when it has no usable results.\n")
	sb.WriteString("- Put each group label on its own line wrapped in **.\n")
	return Prompt{Kind: KindLinkage, System: system, User: sb.String()}, nil
}

func writeAudience(sb *strings.Builder, req BlogRequest) {
	fmt.Fprintf(sb, "Target audience: %s\n", req.TargetAudience)
	fmt.Fprintf(sb, "Tone: %s\n", req.Tone)
	fmt.Fprintf(sb, "Point of view: %s\n", req.PointOfView)
	fmt.Fprintf(sb, "Target country: %s\n", req.TargetCountry)
}

func writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}
