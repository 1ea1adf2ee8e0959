package generator

import "strings"

// Draft is the blog under construction. Sections only ever grow: a new
// section reads everything before it and never rewrites it.
type Draft struct {
	Title    string
	Category string
	Sections []Section
	// ImagePrompts is the append-only history consulted to avoid repeats.
	ImagePrompts []string
}

// WithSection returns a draft with s appended. The receiver's slice is
// never shared with the result.
func (d Draft) WithSection(s Section) Draft {
	next := make([]Section, len(d.Sections), len(d.Sections)+1)
	copy(next, d.Sections)
	d.Sections = append(next, s)
	return d
}

// WithImagePrompt returns a draft with p recorded in the prompt history.
func (d Draft) WithImagePrompt(p string) Draft {
	next := make([]string, len(d.ImagePrompts), len(d.ImagePrompts)+1)
	copy(next, d.ImagePrompts)
	d.ImagePrompts = append(next, p)
	return d
}

// Body is the full text generated so far.
func (d Draft) Body() string {
	return PreviousContent(d.Sections)
}

// PreviousContent joins sections in order as "heading\nbody" blocks.
func PreviousContent(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Heading+"\n"+s.Body)
	}
	return strings.Join(parts, "\n\n")
}
