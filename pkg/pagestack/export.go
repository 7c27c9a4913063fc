package pagestack

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"codeberg.org/go-pdf/fpdf"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// ExportOptions describe the document being written.
type ExportOptions struct {
	Title    string
	Creator  string
	Keywords []string
	// ScratchDir is where the document is assembled. Defaults to the target's directory.
	ScratchDir string
}

// page is one image encoded for embedding.
type page struct {
	size Dimensions
	data []byte
}

// Export writes images as a PDF at target, one page per image in order.
// Each page is exactly as large as its image (one pixel per point) and
// carries the image losslessly. The target is replaced atomically: on
// failure nothing is left at target and an existing file is untouched.
func Export(images []image.Image, target string, o ExportOptions) error {
	if len(images) == 0 {
		return ErrEmptyExport
	}

	klog.Infof("exporting %d pages to %s", len(images), target)
	pages, err := encodePages(images)
	if err != nil {
		return err
	}

	doc := newDocument(pages, o)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("%w: assemble %s: %w", ErrWrite, target, err)
	}

	scratch := o.ScratchDir
	if scratch == "" {
		scratch = filepath.Dir(target)
	}

	tmp, err := os.CreateTemp(scratch, ".pagestack-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := doc.Output(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: output: %w", ErrWrite, err)
	}

	if err := tmp.Chmod(targetMode(target)); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod: %w", ErrWrite, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrWrite, err)
	}

	if err := publish(tmpPath, target); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	klog.Infof("wrote %d pages to %s", len(pages), target)
	return nil
}

// encodePages converts each image to 8-bit PNG, which fpdf embeds without re-compressing.
func encodePages(images []image.Image) ([]page, error) {
	pages := make([]page, 0, len(images))
	enc := imgio.PNGEncoder()

	for i, img := range images {
		if img == nil || img.Bounds().Empty() {
			return nil, fmt.Errorf("%w: page %d has no pixels", ErrWrite, i+1)
		}

		var buf bytes.Buffer
		if err := enc(&buf, imaging.Clone(img)); err != nil {
			return nil, fmt.Errorf("%w: encode page %d: %w", ErrWrite, i+1, err)
		}

		pages = append(pages, page{size: sizeOf(img), data: buf.Bytes()})
		klog.V(1).Infof("page %d: %s, %d bytes", i+1, pages[i].size, buf.Len())
	}
	return pages, nil
}

func newDocument(pages []page, o ExportOptions) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	if o.Creator != "" {
		doc.SetCreator(o.Creator, true)
	}
	if o.Title != "" {
		doc.SetTitle(o.Title, true)
	}
	if len(o.Keywords) > 0 {
		doc.SetKeywords(strings.Join(o.Keywords, " "), true)
	}

	for i, p := range pages {
		w, h := float64(p.size.Width), float64(p.size.Height)
		// "P" keeps width and height as given regardless of which is larger.
		doc.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("page-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.data))
		doc.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}
	return doc
}

// publish moves the assembled document to target. When the scratch
// directory is on another filesystem the document is copied beside target
// first so the final step is still a rename.
func publish(src string, target string) error {
	err := os.Rename(src, target)
	if err == nil || !crossDevice(err) {
		return err
	}
	klog.V(1).Infof("rename %s -> %s: %v, copying instead", src, target, err)

	f, err := os.CreateTemp(filepath.Dir(target), ".pagestack-*.pdf")
	if err != nil {
		return err
	}
	staged := f.Name()
	f.Close()

	if err := copy.Copy(src, staged); err != nil {
		os.Remove(staged)
		return fmt.Errorf("copy: %w", err)
	}

	if err := os.Rename(staged, target); err != nil {
		os.Remove(staged)
		return err
	}
	return nil
}

func crossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// targetMode returns the permissions of an existing regular file at target,
// or 0644 for a new document.
func targetMode(target string) os.FileMode {
	fi, err := os.Stat(target)
	if err != nil || !fi.Mode().IsRegular() {
		return 0o644
	}
	return fi.Mode().Perm()
}
