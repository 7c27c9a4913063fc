package pagestack

import (
	"fmt"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// MetadataReader reads descriptive tags using an exiftool process.
type MetadataReader struct {
	et *exiftool.Exiftool
}

// NewMetadataReader starts exiftool. It fails if exiftool is not installed.
func NewMetadataReader() (*MetadataReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &MetadataReader{et: et}, nil
}

// Read returns the title, description and keywords stored in path.
// Absent tags are left empty.
func (m *MetadataReader) Read(path string) (Metadata, error) {
	md := Metadata{}

	fis := m.et.ExtractMetadata(path)
	if len(fis) == 0 {
		return md, fmt.Errorf("no metadata for %q", path)
	}
	fi := fis[0]
	if fi.Err != nil {
		return md, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	var err error
	md.Title, err = fi.GetString("Headline")
	if err != nil {
		md.Title, err = fi.GetString("Title")
		if err != nil {
			klog.V(1).Infof("unable to get headline for %s: %v", path, err)
		}
	}

	md.Description, err = fi.GetString("ImageDescription")
	if err != nil {
		klog.V(1).Infof("unable to get description for %s: %v", path, err)
	}

	md.Keywords, err = fi.GetStrings("Keywords")
	if err != nil {
		klog.V(1).Infof("unable to get keywords for %s: %v", path, err)
	}

	return md, nil
}

// Close stops the exiftool process.
func (m *MetadataReader) Close() error {
	return m.et.Close()
}
