package imagegen

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
)

// MockFetcher renders a small solid-colour PNG for every prompt.
type MockFetcher struct{}

func (MockFetcher) Fetch(_ context.Context, _ string) (Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: 0xe8, G: 0xd5, B: 0xb7, A: 0xff}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, err
	}
	return Decode(buf.Bytes())
}
