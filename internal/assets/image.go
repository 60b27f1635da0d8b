package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Normalizer keeps downloaded images within a maximum edge length.
type Normalizer struct {
	MaxDimension int
}

// NewNormalizer returns nil when maxDimension is not positive, which disables
// normalization.
func NewNormalizer(maxDimension int) *Normalizer {
	if maxDimension <= 0 {
		return nil
	}
	return &Normalizer{MaxDimension: maxDimension}
}

// Normalize downscales the PNG or JPEG at path so neither side exceeds
// MaxDimension, keeping the aspect ratio and the original format. Images that
// already fit are left untouched. It reports whether the file was rewritten.
func (n *Normalizer) Normalize(path string) (bool, error) {
	if n == nil || n.MaxDimension <= 0 {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), n.MaxDimension)
	if width == bounds.Dx() && height == bounds.Dy() {
		return false, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// fitWithin scales width x height down so the longer side equals limit.
func fitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width >= height {
		return limit, max(height*limit/width, 1)
	}
	return max(width*limit/height, 1), limit
}
