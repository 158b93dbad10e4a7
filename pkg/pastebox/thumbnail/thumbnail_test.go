package thumbnail_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastebox/pastebox/pkg/pastebox"
	"github.com/pastebox/pastebox/pkg/pastebox/thumbnail"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDeriveCoverCrop(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"landscape png", func(t *testing.T) []byte { return encodePNG(t, 640, 480) }},
		{"portrait png", func(t *testing.T) []byte { return encodePNG(t, 480, 640) }},
		{"square png", func(t *testing.T) []byte { return encodePNG(t, 300, 300) }},
		{"smaller than target", func(t *testing.T) []byte { return encodePNG(t, 40, 60) }},
		{"landscape jpeg", func(t *testing.T) []byte { return encodeJPEG(t, 800, 200) }},
		{"tall jpeg", func(t *testing.T) []byte { return encodeJPEG(t, 200, 800) }},
	}

	d := thumbnail.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Derive(context.Background(), bytes.NewReader(tt.data(t)))
			require.NoError(t, err)

			thumb, _, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, thumbnail.DefaultWidth, thumb.Bounds().Dx())
			assert.Equal(t, thumbnail.DefaultHeight, thumb.Bounds().Dy())
		})
	}
}

func TestDerivePreservesPNGFormat(t *testing.T) {
	d := thumbnail.New()

	out, err := d.Derive(context.Background(), bytes.NewReader(encodePNG(t, 200, 200)))
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestDeriveJPEGStaysJPEG(t *testing.T) {
	d := thumbnail.New()

	out, err := d.Derive(context.Background(), bytes.NewReader(encodeJPEG(t, 200, 200)))
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestDeriveRejectsGarbage(t *testing.T) {
	d := thumbnail.New()

	_, err := d.Derive(context.Background(), strings.NewReader("not an image at all"))
	assert.ErrorIs(t, err, pastebox.ErrUnsupportedImage)
}

func TestDeriveCustomSize(t *testing.T) {
	d := thumbnail.NewWithSize(64, 48)

	out, err := d.Derive(context.Background(), bytes.NewReader(encodePNG(t, 640, 480)))
	require.NoError(t, err)

	thumb, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 48, thumb.Bounds().Dy())
}

func TestSupports(t *testing.T) {
	d := thumbnail.New()

	assert.True(t, d.Supports("image/png"))
	assert.True(t, d.Supports("image/jpeg"))
	assert.False(t, d.Supports("text/plain"))
	assert.False(t, d.Supports("application/pdf"))
}
