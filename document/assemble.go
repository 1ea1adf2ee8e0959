package document

import (
	"regexp"
	"strings"
)

var (
	// headingLine matches a line that opens with a **...** span.
	headingLine = regexp.MustCompile(`^\*\*(.*?)\*\*`)
	// bulletLine matches "• **text**" with optional spaces.
	bulletLine   = regexp.MustCompile(`^\s*•\s*\*\*\s*(.*?)\s*\*\*`)
	bulletPrefix = regexp.MustCompile(`^\s*•\s*`)
)

// AppendText classifies each line of text and appends the matching node:
// emphasis-wrapped lines become level-2 headings, "• **...**" lines become
// bold bullets and everything else a justified paragraph. Blank lines are
// dropped. The whole document is then recoloured black.
func AppendText(d *Document, text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case headingLine.MatchString(line):
			d.AddHeading(stripMarkers(line), 2)
		case bulletLine.MatchString(line):
			d.AddBullet(stripMarkers(bulletPrefix.ReplaceAllString(line, "")), true)
		default:
			d.AddParagraph(strings.TrimSpace(line), AlignJustify)
		}
	}
	d.ForceTextColor(Black)
}

// AppendSection adds heading as a level-2 heading followed by body. When
// body already opens with that same heading it is not repeated.
func AppendSection(d *Document, heading, body string) {
	if !opensWith(body, heading) {
		d.AddHeading(heading, 2)
	}
	AppendText(d, body)
}

func opensWith(body, heading string) bool {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headingLine.MatchString(line) {
			return false
		}
		return strings.EqualFold(stripMarkers(line), strings.TrimSpace(heading))
	}
	return false
}

func stripMarkers(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
}
