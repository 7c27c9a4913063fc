package pagestack

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// Find returns the image files under root in lexical order.
// Hidden files and directories are skipped.
func Find(root string) ([]string, error) {
	found := []string{}
	root = filepath.Clean(root)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path != root && strings.HasPrefix(filepath.Base(path), ".") {
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				return nil
			}

			if imageExts[strings.ToLower(filepath.Ext(path))] {
				klog.V(1).Infof("found %s", path)
				found = append(found, path)
			}
			return nil
		},
	})

	sort.Strings(found)
	return found, err
}
