// Package imagegen turns a text prompt into image bytes via a hosted model.
package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// Image is a decoded-and-verified picture returned by a Fetcher.
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Ext is the file extension matching the image format.
func (img Image) Ext() string {
	switch img.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// Fetcher is the image-generation collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, prompt string) (Image, error)
}

// ErrNoImage means the model answered without any image payload.
var ErrNoImage = errors.New("no image returned by model")

// Decode checks that data is a PNG, JPEG or GIF and records its size.
func Decode(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNoImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decoding image: %w", err)
	}
	return Image{
		Data:     data,
		MIMEType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Save writes img to dir/name plus the matching extension and returns the path.
func Save(dir, name string, img Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+img.Ext())
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads an image previously written by Save.
func Load(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return Decode(data)
}

// StatusError is a non-success answer from an image API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image api returned status %d: %s", e.Code, e.Body)
}
