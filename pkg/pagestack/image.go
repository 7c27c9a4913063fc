package pagestack

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	"k8s.io/klog/v2"
)

// Metadata is descriptive text embedded in an image file.
type Metadata struct {
	Title       string
	Description string
	Keywords    []string
}

// WorkingImage is a loaded image and its on-screen preview.
//
// All edits replace canonical. preview is always derived from the current
// canonical and is never edited on its own.
type WorkingImage struct {
	Path string
	Meta Metadata

	canonical image.Image
	preview   image.Image
	maxPixels int64
}

// LoadImage decodes the image at path and builds its preview.
// Images larger than maxPixels are refused with ErrResource.
func LoadImage(path string, maxPixels int64) (*WorkingImage, error) {
	d, err := decodeSize(path)
	if err != nil {
		return nil, err
	}

	if maxPixels > 0 && d.Pixels() > maxPixels {
		return nil, fmt.Errorf("%w: %s is %s, limit is %d pixels", ErrResource, path, d, maxPixels)
	}

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	// Transforms and export work in 8-bit NRGBA; converting once here keeps
	// Canonical() stable across rotate and flip.
	canonical := imaging.Clone(img)

	w := &WorkingImage{Path: path, maxPixels: maxPixels}
	preview, err := w.previewOf(canonical)
	if err != nil {
		return nil, err
	}

	w.canonical = canonical
	w.preview = preview
	klog.V(1).Infof("loaded %s: %s (preview %s)", path, w.Size(), w.PreviewSize())
	return w, nil
}

func decodeSize(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	ic, format, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	klog.V(2).Infof("%s: format=%s size=%dx%d", path, format, ic.Width, ic.Height)

	if ic.Width <= 0 || ic.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: %s has no pixels", ErrLoad, path)
	}
	return Dimensions{Width: ic.Width, Height: ic.Height}, nil
}

// Canonical returns the full resolution image. Callers must not modify it.
func (w *WorkingImage) Canonical() image.Image {
	return w.canonical
}

// Preview returns the bounded display copy of the canonical image.
func (w *WorkingImage) Preview() image.Image {
	return w.preview
}

// Size returns the canonical image dimensions.
func (w *WorkingImage) Size() Dimensions {
	return sizeOf(w.canonical)
}

// PreviewSize returns the preview dimensions.
func (w *WorkingImage) PreviewSize() Dimensions {
	return sizeOf(w.preview)
}

// Rotate turns the image 90 degrees counter-clockwise, swapping width and height.
func (w *WorkingImage) Rotate() error {
	return w.apply("rotate", func(img image.Image) image.Image {
		return imaging.Rotate90(img)
	})
}

// Flip mirrors the image left to right.
func (w *WorkingImage) Flip() error {
	return w.apply("flip", func(img image.Image) image.Image {
		return imaging.FlipH(img)
	})
}

// apply replaces canonical with fn(canonical) and rebuilds the preview.
// Nothing is committed unless both steps succeed.
func (w *WorkingImage) apply(name string, fn func(image.Image) image.Image) error {
	if w.maxPixels > 0 && w.Size().Pixels() > w.maxPixels {
		return fmt.Errorf("%w: %s %s: %s exceeds %d pixels", ErrResource, name, w.Path, w.Size(), w.maxPixels)
	}

	next := fn(w.canonical)
	if next == nil || next.Bounds().Empty() {
		return fmt.Errorf("%w: %s %s produced no image", ErrResource, name, w.Path)
	}

	preview, err := w.previewOf(next)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	klog.V(1).Infof("%s %s: %s -> %s", name, w.Path, w.Size(), sizeOf(next))
	w.canonical = next
	w.preview = preview
	return nil
}

// previewOf returns img itself when it already fits the preview box.
func (w *WorkingImage) previewOf(img image.Image) (image.Image, error) {
	d := sizeOf(img)
	fd := Fit(d)
	if fd == d {
		return img, nil
	}

	if fd.Width <= 0 || fd.Height <= 0 {
		return nil, fmt.Errorf("%w: no preview size for %s", ErrResource, d)
	}

	klog.V(1).Infof("resizing preview of %s: %s -> %s", w.Path, d, fd)
	return transform.Resize(img, fd.Width, fd.Height, transform.Lanczos), nil
}

func sizeOf(img image.Image) Dimensions {
	if img == nil {
		return Dimensions{}
	}
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}
