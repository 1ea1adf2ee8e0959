package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftWithSectionDoesNotAlias(t *testing.T) {
	base := Draft{Title: "t"}
	a := base.WithSection(Section{Heading: "A", Body: "a"})
	b := a.WithSection(Section{Heading: "B", Body: "b"})
	c := a.WithSection(Section{Heading: "C", Body: "c"})

	assert.Empty(t, base.Sections)
	require.Len(t, a.Sections, 1)
	assert.Equal(t, "B", b.Sections[1].Heading)
	assert.Equal(t, "C", c.Sections[1].Heading)
	assert.Equal(t, "A\na\n\nB\nb", b.Body())
}

func TestDraftWithImagePrompt(t *testing.T) {
	d := Draft{}.WithImagePrompt("one").WithImagePrompt("two")
	assert.Equal(t, []string{"one", "two"}, d.ImagePrompts)
}

func TestPreviousContentEmpty(t *testing.T) {
	assert.Equal(t, "", PreviousContent(nil))
}

func TestBlogRequestValidate(t *testing.T) {
	req, err := BlogRequest{Keywords: []string{" sleep ", "", "naps"}}.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"sleep", "naps"}, req.Keywords)

	_, err = BlogRequest{Keywords: []string{" "}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
