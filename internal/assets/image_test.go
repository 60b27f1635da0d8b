package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNormalizeDownscalesKeepingAspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.png")
	writePNG(t, path, 400, 200)

	changed, err := NewNormalizer(100).Normalize(path)
	if err != nil || !changed {
		t.Fatalf("expected rewrite, got changed=%v err=%v", changed, err)
	}
	if w, h := decodeSize(t, path); w != 100 || h != 50 {
		t.Fatalf("expected 100x50, got %dx%d", w, h)
	}
}

func TestNormalizeLeavesSmallImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, path, 64, 80)
	before, _ := os.ReadFile(path)

	changed, err := NewNormalizer(100).Normalize(path)
	if err != nil || changed {
		t.Fatalf("expected no change, got changed=%v err=%v", changed, err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("file should be untouched")
	}
}

func TestNormalizeRejectsNonImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("<html>not found</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewNormalizer(10).Normalize(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNilNormalizerIsNoop(t *testing.T) {
	n := NewNormalizer(0)
	if changed, err := n.Normalize("does-not-matter"); changed || err != nil {
		t.Fatalf("expected noop, got %v %v", changed, err)
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct{ w, h, limit, ww, wh int }{
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{50, 50, 100, 50, 50},
		{1000, 1, 10, 10, 1},
	}
	for _, c := range cases {
		if w, h := fitWithin(c.w, c.h, c.limit); w != c.ww || h != c.wh {
			t.Fatalf("fitWithin(%d,%d,%d) = %dx%d, want %dx%d", c.w, c.h, c.limit, w, h, c.ww, c.wh)
		}
	}
}
