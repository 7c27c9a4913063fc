package pagestack

import "errors"

var (
	// ErrLoad is returned when a source image cannot be opened or decoded.
	ErrLoad = errors.New("unable to load image")
	// ErrIndex is returned when a selection is outside of the collection.
	ErrIndex = errors.New("index out of range")
	// ErrEmptyCollection is returned when an operation needs a selected image but none are loaded.
	ErrEmptyCollection = errors.New("no images loaded")
	// ErrEmptyExport is returned when a document would have zero pages.
	ErrEmptyExport = errors.New("nothing to export")
	// ErrWrite is returned when an output file cannot be written.
	ErrWrite = errors.New("unable to write")
	// ErrResource is returned when an image would exceed the configured pixel budget.
	ErrResource = errors.New("image too large")
)
