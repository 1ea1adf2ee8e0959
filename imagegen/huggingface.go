package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co/models"

// HuggingFace calls the HF inference API, which answers a text-to-image
// request with raw image bytes.
type HuggingFace struct {
	baseURL string
	model   string
	token   string
	client  *http.Client
}

func NewHuggingFace(baseURL, model, token string, client *http.Client) (*HuggingFace, error) {
	if token == "" {
		return nil, errors.New("hugging face api token missing; provide image.api_key")
	}
	if model == "" {
		return nil, errors.New("image model is required")
	}
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 180 * time.Second}
	}
	return &HuggingFace{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.Trim(model, "/"),
		token:   token,
		client:  client,
	}, nil
}

func (h *HuggingFace) Fetch(ctx context.Context, prompt string) (Image, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return Image{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+h.model, bytes.NewReader(body))
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	resp, err := h.client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Image{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(preview))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, err
	}
	return Decode(data)
}
