package pagestack

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		w, h        int
		wantPreview Dimensions
	}{
		{name: "small", w: 500, h: 300, wantPreview: Dimensions{500, 300}},
		{name: "large landscape", w: 1600, h: 1200, wantPreview: Dimensions{800, 600}},
		{name: "large portrait", w: 900, h: 1800, wantPreview: Dimensions{300, 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t, dir, tt.name+".png", tt.w, tt.h)
			w, err := LoadImage(path, 0)
			if err != nil {
				t.Fatalf("LoadImage: %v", err)
			}

			if got, want := w.Size(), (Dimensions{tt.w, tt.h}); got != want {
				t.Errorf("Size = %s, want %s", got, want)
			}
			if got := w.PreviewSize(); got != tt.wantPreview {
				t.Errorf("PreviewSize = %s, want %s", got, tt.wantPreview)
			}
			samePixels(t, w.Canonical(), pattern(tt.w, tt.h))
		})
	}
}

func TestLoadImageSmallSharesCanonical(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 120, 80)
	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if w.Preview() != w.Canonical() {
		t.Errorf("preview of an image inside the box should be the canonical image")
	}
}

func TestLoadImageTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tiff.Encode(f, pattern(64, 48), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	samePixels(t, w.Canonical(), pattern(64, 48))
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("this is not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	big := writePNG(t, dir, "big.png", 100, 100)

	tests := []struct {
		name      string
		path      string
		maxPixels int64
		want      error
	}{
		{name: "missing", path: filepath.Join(dir, "nope.png"), want: ErrLoad},
		{name: "directory", path: dir, want: ErrLoad},
		{name: "undecodable", path: junk, want: ErrLoad},
		{name: "over budget", path: big, maxPixels: 9999, want: ErrResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadImage(tt.path, tt.maxPixels)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadImage(%s) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 1000, 500)
	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	orig := w.Canonical()

	want := []struct{ size, preview Dimensions }{
		{Dimensions{500, 1000}, Dimensions{300, 600}},
		{Dimensions{1000, 500}, Dimensions{800, 400}},
		{Dimensions{500, 1000}, Dimensions{300, 600}},
		{Dimensions{1000, 500}, Dimensions{800, 400}},
	}
	for i, ww := range want {
		if err := w.Rotate(); err != nil {
			t.Fatalf("Rotate #%d: %v", i+1, err)
		}
		if got := w.Size(); got != ww.size {
			t.Errorf("after %d rotations Size = %s, want %s", i+1, got, ww.size)
		}
		if got := w.PreviewSize(); got != ww.preview {
			t.Errorf("after %d rotations PreviewSize = %s, want %s", i+1, got, ww.preview)
		}
	}
	samePixels(t, w.Canonical(), orig)
}

func TestRotateIsCounterClockwise(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 40, 20)
	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	src := w.Canonical()
	if err := w.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	dst := w.Canonical()

	// The top-right corner moves to the top-left.
	for _, p := range [][2]int{{0, 0}, {39, 0}, {0, 19}, {39, 19}, {13, 7}} {
		x, y := p[0], p[1]
		if got, want := nrgbaAt(dst, y, 39-x), nrgbaAt(src, x, y); got != want {
			t.Errorf("rotated pixel for (%d,%d) = %v, want %v", x, y, got, want)
		}
	}
}

func TestFlip(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 30, 10)
	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	orig := w.Canonical()

	if err := w.Flip(); err != nil {
		t.Fatalf("Flip: %v", err)
	}
	if got := w.Size(); got != (Dimensions{30, 10}) {
		t.Errorf("Size = %s, want 30x10", got)
	}
	for _, p := range [][2]int{{0, 0}, {29, 0}, {5, 9}} {
		x, y := p[0], p[1]
		if got, want := nrgbaAt(w.Canonical(), 29-x, y), nrgbaAt(orig, x, y); got != want {
			t.Errorf("mirrored pixel for (%d,%d) = %v, want %v", x, y, got, want)
		}
	}
	if w.Preview() != w.Canonical() {
		t.Errorf("preview not refreshed after flip")
	}

	if err := w.Flip(); err != nil {
		t.Fatalf("Flip: %v", err)
	}
	samePixels(t, w.Canonical(), orig)
}

func TestTransformOverBudgetKeepsImage(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 50, 20)
	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	orig, prev := w.Canonical(), w.Preview()

	w.maxPixels = 10
	if err := w.Rotate(); !errors.Is(err, ErrResource) {
		t.Fatalf("Rotate error = %v, want %v", err, ErrResource)
	}
	if w.Canonical() != orig || w.Preview() != prev {
		t.Errorf("failed rotate changed the image")
	}
}

func TestFlipSixteenBit(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA64(x, y, color.NRGBA64{R: uint16(x*4096 + y*17), G: uint16(y*8000 + 3), B: 0x1234 + uint16(x), A: 0xffff})
		}
	}

	path := filepath.Join(t.TempDir(), "deep.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	w, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if _, ok := w.Canonical().(*image.NRGBA); !ok {
		t.Errorf("canonical is %T, want *image.NRGBA", w.Canonical())
	}
	samePixels(t, w.Canonical(), src)
	orig := w.Canonical()

	for i := 0; i < 2; i++ {
		if err := w.Flip(); err != nil {
			t.Fatalf("Flip: %v", err)
		}
	}
	samePixels(t, w.Canonical(), orig)
}
