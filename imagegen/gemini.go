package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiImageModel = "models/gemini-2.5-flash-image"

// Gemini generates images with the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini fetcher. baseURL is only set in tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key missing; provide image.api_key")
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: geminiModelName(model)}, nil
}

func (g *Gemini) Fetch(ctx context.Context, prompt string) (Image, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return Image{}, err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return Image{}, ErrNoImage
	}
	var text strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return Decode(part.InlineData.Data)
		}
		text.WriteString(part.Text)
	}
	if s := strings.TrimSpace(text.String()); s != "" {
		if len(s) > 512 {
			s = s[:512] + "..."
		}
		return Image{}, fmt.Errorf("%w: %s", ErrNoImage, s)
	}
	return Image{}, ErrNoImage
}

// geminiModelName normalizes "google/x:free", "x" or "models/x" to "models/x".
func geminiModelName(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return defaultGeminiImageModel
	}
	if strings.HasPrefix(m, "models/") {
		return m
	}
	m = strings.TrimPrefix(m, "google/")
	if i := strings.IndexByte(m, ':'); i >= 0 {
		m = m[:i]
	}
	return "models/" + m
}
