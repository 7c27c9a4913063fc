// Package pagestack assembles loaded images into a multi-page PDF.
package pagestack

import (
	"fmt"
	"image"
	"path/filepath"
	"slices"
	"strings"

	"k8s.io/klog/v2"
)

// Page is a point-in-time view of one image in a session.
type Page struct {
	Index       int
	Path        string
	Title       string
	Size        Dimensions
	PreviewSize Dimensions
	Preview     image.Image
	Selected    bool
}

// Session is the ordered collection of images being assembled, plus the
// current selection. It is not safe for concurrent use.
type Session struct {
	c        *Config
	meta     *MetadataReader
	images   []*WorkingImage
	selected int
}

// NewSession creates an empty session. A nil config uses DefaultConfig.
func NewSession(c *Config) *Session {
	if c == nil {
		c = DefaultConfig()
	}

	s := &Session{c: c, selected: -1}
	if c.ReadMetadata {
		m, err := NewMetadataReader()
		if err != nil {
			klog.Warningf("metadata disabled: %v", err)
		} else {
			s.meta = m
		}
	}
	return s
}

// Close releases the metadata reader, if any.
func (s *Session) Close() error {
	if s.meta == nil {
		return nil
	}
	return s.meta.Close()
}

// Len returns the number of images.
func (s *Session) Len() int {
	return len(s.images)
}

// Selected returns the selected index, or -1 when the session is empty.
func (s *Session) Selected() int {
	return s.selected
}

// Add loads path, appends it and selects it. An empty path is a canceled
// open dialog: nothing changes and -1 is returned.
//
// A non-nil error with a valid index means the image was added but its
// preview could not be rendered.
func (s *Session) Add(path string) (int, error) {
	if path == "" {
		return -1, nil
	}

	w, err := LoadImage(path, s.c.MaxPixels)
	if err != nil {
		return -1, err
	}

	if s.meta != nil {
		md, err := s.meta.Read(path)
		if err != nil {
			klog.Warningf("unable to read metadata for %s: %v", path, err)
		}
		w.Meta = md
	}

	s.images = append(s.images, w)
	s.selected = len(s.images) - 1
	klog.Infof("added %s as image %d (%s)", path, s.selected, w.Size())
	return s.selected, s.render()
}

// AddDir adds every image found under dir in lexical order. It stops at the
// first image that fails to load; images added before it stay in the
// session. Preview render failures do not stop the import; the first one is
// returned once every image has been added.
func (s *Session) AddDir(dir string) (int, error) {
	paths, err := Find(dir)
	if err != nil {
		return 0, fmt.Errorf("%w: find: %w", ErrLoad, err)
	}

	added := 0
	var renderErr error
	for _, p := range paths {
		i, err := s.Add(p)
		if i < 0 {
			return added, err
		}
		added++
		if err != nil && renderErr == nil {
			renderErr = err
		}
	}
	klog.Infof("added %d images from %s", added, dir)
	return added, renderErr
}

// Select makes index the current image.
func (s *Session) Select(index int) error {
	if index < 0 || index >= len(s.images) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, index, len(s.images))
	}
	s.selected = index
	return s.render()
}

// Current returns a view of the selected image.
func (s *Session) Current() (Page, error) {
	w, err := s.current()
	if err != nil {
		return Page{}, err
	}
	return s.page(s.selected, w), nil
}

func (s *Session) current() (*WorkingImage, error) {
	if len(s.images) == 0 {
		return nil, ErrEmptyCollection
	}
	return s.images[s.selected], nil
}

// Rotate turns the selected image 90 degrees counter-clockwise.
func (s *Session) Rotate() error {
	w, err := s.current()
	if err != nil {
		return err
	}
	if err := w.Rotate(); err != nil {
		return err
	}
	return s.render()
}

// Flip mirrors the selected image left to right.
func (s *Session) Flip() error {
	w, err := s.current()
	if err != nil {
		return err
	}
	if err := w.Flip(); err != nil {
		return err
	}
	return s.render()
}

// Pages returns a view of every image in order.
func (s *Session) Pages() []Page {
	ps := make([]Page, 0, len(s.images))
	for i, w := range s.images {
		ps = append(ps, s.page(i, w))
	}
	return ps
}

// Canonicals returns the full resolution images in insertion order.
func (s *Session) Canonicals() []image.Image {
	is := make([]image.Image, 0, len(s.images))
	for _, w := range s.images {
		is = append(is, w.Canonical())
	}
	return is
}

// Export writes every image to target as a PDF. An empty target is a
// canceled save dialog and does nothing.
func (s *Session) Export(target string) error {
	if target == "" {
		return nil
	}
	return Export(s.Canonicals(), target, s.exportOptions(target))
}

func (s *Session) exportOptions(target string) ExportOptions {
	o := ExportOptions{Creator: s.c.Creator, ScratchDir: s.c.ScratchDir}

	for _, w := range s.images {
		if o.Title == "" && w.Meta.Title != "" {
			o.Title = w.Meta.Title
		}
		for _, k := range w.Meta.Keywords {
			if !slices.Contains(o.Keywords, k) {
				o.Keywords = append(o.Keywords, k)
			}
		}
	}

	if o.Title == "" {
		base := filepath.Base(target)
		o.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return o
}

func (s *Session) page(i int, w *WorkingImage) Page {
	return Page{
		Index:       i,
		Path:        w.Path,
		Title:       w.Meta.Title,
		Size:        w.Size(),
		PreviewSize: w.PreviewSize(),
		Preview:     w.Preview(),
		Selected:    i == s.selected,
	}
}

// render draws the selected preview to the configured preview path.
func (s *Session) render() error {
	if s.c.PreviewPath == "" {
		return nil
	}
	w, err := s.current()
	if err != nil {
		return err
	}
	return WritePreview(s.c.PreviewPath, w.Preview(), s.c.PreviewQuality)
}
