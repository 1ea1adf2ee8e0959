package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM answers every prompt kind with fixed, well-formed text so the
// pipeline can run locally without calling a model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch prompt.Kind {
	case KindCategory:
		return "Everyday Life with Kids", nil
	case KindTitle:
		return "A Calmer Routine, One Step at a Time", nil
	case KindSubheadings:
		return "Why Routines Matter\nBuilding a Routine That Sticks\nWhen Plans Fall Apart", nil
	case KindSection:
		heading := promptField(prompt.User, "Subheading: ")
		var sb strings.Builder
		fmt.Fprintf(&sb, "**%s**\n", heading)
		sb.WriteString("Small, predictable steps help children know what comes next.\n")
		sb.WriteString("• **Start small** with one anchor habit.\n")
		sb.WriteString("Keep the tone light and adjust as you go.")
		return sb.String(), nil
	case KindIllustrate:
		return "Yes", nil
	case KindImagePrompt:
		return "A watercolor scene of a parent and child reading by a window at dusk", nil
	case KindLinkage:
		return "**External Links**\n1. Sleep Foundation - evidence based sleep guidance.\n**Internal Links**\n1. Bedtime routines - more tips.", nil
	default:
		return "", fmt.Errorf("mock llm: unknown prompt kind %q", prompt.Kind)
	}
}

// promptField returns the rest of the first line starting with label.
func promptField(text, label string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}
