package pagestack

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// pattern returns an opaque image where every pixel is distinguishable by position.
func pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8((x * 7) ^ (y * 3)), A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, dir string, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, pattern(w, h)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}

// samePixels reports the first differing pixel, if any.
func samePixels(t *testing.T, got image.Image, want image.Image) {
	t.Helper()
	gs, ws := sizeOf(got), sizeOf(want)
	if gs != ws {
		t.Fatalf("size = %s, want %s", gs, ws)
	}
	for y := 0; y < ws.Height; y++ {
		for x := 0; x < ws.Width; x++ {
			if g, w := nrgbaAt(got, x, y), nrgbaAt(want, x, y); g != w {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, g, w)
			}
		}
	}
}
