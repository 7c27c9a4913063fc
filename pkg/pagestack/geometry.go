package pagestack

import "fmt"

var (
	// MaxLandscape is the preview bounding box for wide images.
	MaxLandscape = Dimensions{Width: 800, Height: 600}
	// MaxPortrait is the preview bounding box tall images were meant to use.
	// Fit currently bounds every orientation by MaxLandscape.
	MaxPortrait = Dimensions{Width: 600, Height: 800}
)

// Dimensions is a width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Landscape reports whether the image is strictly wider than it is tall.
func (d Dimensions) Landscape() bool {
	return d.Width > d.Height
}

// Pixels returns the pixel count.
func (d Dimensions) Pixels() int64 {
	return int64(d.Width) * int64(d.Height)
}

// AspectRatio returns width / height.
func (d Dimensions) AspectRatio() float64 {
	return float64(d.Width) / float64(d.Height)
}

func boundingBox(d Dimensions) Dimensions {
	if d.Landscape() {
		return MaxLandscape
	}
	// Square and tall images share the landscape box.
	return MaxLandscape
}

// NeedsFit reports whether d must go through scaling. Both axes must be
// strictly under the box for an image to be left alone.
func NeedsFit(d Dimensions) bool {
	box := boundingBox(d)
	return !(d.Width < box.Width && d.Height < box.Height)
}

// Fit returns the preview size for an image of size d.
//
// The axis that exceeds its bound by the larger ratio is pinned to the box
// and the other axis follows the aspect ratio, truncated. Ties go to the
// height axis. Ratios are compared and applied with integer cross
// multiplication so the result is exact; this also makes Fit a fixed point
// on its own output.
func Fit(d Dimensions) Dimensions {
	if d.Width <= 0 || d.Height <= 0 || !NeedsFit(d) {
		return d
	}

	box := boundingBox(d)
	w, h := int64(d.Width), int64(d.Height)
	bw, bh := int64(box.Width), int64(box.Height)

	var out Dimensions
	// w/bw > h/bh
	if w*bh > h*bw {
		out.Width = box.Width
		out.Height = int(bw * h / w)
	} else {
		out.Height = box.Height
		out.Width = int(bh * w / h)
	}

	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
