package generator

import (
	"regexp"
	"strings"
)

// Decision is the parsed answer of the illustration decider.
type Decision int

const (
	NoImage Decision = iota
	AddImage
)

func (d Decision) String() string {
	if d == AddImage {
		return "yes"
	}
	return "no"
}

// affirmativeTokens are the only answers that count as a yes.
var affirmativeTokens = map[string]bool{
	"yes":  true,
	"y":    true,
	"true": true,
}

var (
	listPrefixRe   = regexp.MustCompile(`^\s*(?:[-*•#]+|\d+[.)]|[A-Za-z][.)])\s+`)
	answerLabelRe  = regexp.MustCompile(`(?i)^\s*(?:answer|output|decision|title|prompt|image prompt)\s*:\s*`)
	wordTrimCutset = " \t\r\n.,;:!?\"'*`()[]"
)

// ParseDecision maps free text onto a Decision. Only the first word is
// considered and it must be an affirmative token; "No", empty text and
// anything else yield NoImage.
func ParseDecision(raw string) Decision {
	s := answerLabelRe.ReplaceAllString(strings.TrimSpace(raw), "")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return NoImage
	}
	word := strings.ToLower(strings.Trim(fields[0], wordTrimCutset))
	if affirmativeTokens[word] {
		return AddImage
	}
	return NoImage
}

// CleanTitle strips labels, markdown and quotes around a one-line answer.
func CleanTitle(raw string) string {
	line := firstLine(raw)
	line = answerLabelRe.ReplaceAllString(line, "")
	line = strings.TrimLeft(line, "# ")
	return stripWrapping(line)
}

// ParseSubheadings splits the model answer into at most limit headings,
// dropping list markers, emphasis and blank lines. limit <= 0 keeps all.
func ParseSubheadings(raw string, limit int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listPrefixRe.ReplaceAllString(line, "")
		line = stripWrapping(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// CleanImagePrompt keeps the first prompt line without list markers or quotes.
func CleanImagePrompt(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = answerLabelRe.ReplaceAllString(strings.TrimSpace(line), "")
		line = listPrefixRe.ReplaceAllString(line, "")
		if line = stripWrapping(line); line != "" {
			return line
		}
	}
	return ""
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// stripWrapping removes matching ** / quotes around s, repeatedly.
func stripWrapping(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case len(s) >= 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**"):
			s = s[2 : len(s)-2]
		case len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\''):
			s = s[1 : len(s)-1]
		default:
			return s
		}
	}
}
