package pagestack

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"k8s.io/klog/v2"
)

// WritePreview renders a preview image to path as a JPEG.
func WritePreview(path string, img image.Image, quality int) error {
	if img == nil {
		return fmt.Errorf("%w: no preview to render", ErrWrite)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %w", ErrWrite, err)
	}

	klog.V(1).Infof("rendering %dx%d preview to %s", img.Bounds().Dx(), img.Bounds().Dy(), path)
	if err := imgio.Save(path, img, imgio.JPEGEncoder(quality)); err != nil {
		return fmt.Errorf("%w: save: %w", ErrWrite, err)
	}
	return nil
}
