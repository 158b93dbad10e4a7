// Package thumbnail derives fixed-size cover-cropped previews from image
// payloads.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/nfnt/resize"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

// Default target dimensions for derived thumbnails.
const (
	DefaultWidth  = 150
	DefaultHeight = 150
)

const jpegQuality = 85

// Deriver implements pastebox.Thumbnailer using a cover-crop strategy: the
// source is scaled to fill the target box and the overflow dimension is
// center-cropped. Aspect ratio is preserved; no letterboxing.
type Deriver struct {
	width  int
	height int
}

// New creates a Deriver with the default 150x150 target box.
func New() *Deriver {
	return NewWithSize(DefaultWidth, DefaultHeight)
}

// NewWithSize creates a Deriver with a custom target box.
func NewWithSize(width, height int) *Deriver {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Deriver{width: width, height: height}
}

// Supports returns true for image-classified MIME types.
func (d *Deriver) Supports(contentType string) bool {
	return pastebox.IsImageContentType(contentType)
}

// Derive decodes the source, cover-crops it to the target box and encodes
// the result. PNG sources stay PNG so transparency survives; everything
// else becomes JPEG.
func (d *Deriver) Derive(ctx context.Context, source io.Reader) ([]byte, error) {
	img, format, err := image.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pastebox.ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", pastebox.ErrUnsupportedImage)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cropped := d.coverCrop(img)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, cropped)
	default:
		err = jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// coverCrop scales the image so it fills the target box, then crops the
// overflow dimension around the center.
func (d *Deriver) coverCrop(img image.Image) image.Image {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	scale := math.Max(
		float64(d.width)/float64(srcW),
		float64(d.height)/float64(srcH),
	)
	scaledW := int(math.Ceil(float64(srcW) * scale))
	scaledH := int(math.Ceil(float64(srcH) * scale))

	scaled := resize.Resize(uint(scaledW), uint(scaledH), img, resize.Lanczos3)

	out := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	offset := image.Pt((scaledW-d.width)/2, (scaledH-d.height)/2)
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min.Add(offset), draw.Src)

	return out
}
