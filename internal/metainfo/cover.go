package metainfo

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var coverNames = []string{"cover", "folder", "album", "front", "artwork", "albumart"}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FindCoverArt walks dir and picks one cover image per directory:
// images with conventional cover names win, otherwise the first image
// found. Returns directory -> image path.
func FindCoverArt(dir string) map[string]string {
	named := make(map[string]string)
	fallback := make(map[string]string)

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		ext := filepath.Ext(name)
		if !imageExts[ext] {
			return nil
		}
		parent := filepath.Dir(path)
		if _, ok := fallback[parent]; !ok {
			fallback[parent] = path
		}
		if _, ok := named[parent]; ok {
			return nil
		}
		base := strings.TrimSuffix(name, ext)
		for _, want := range coverNames {
			if strings.Contains(base, want) {
				named[parent] = path
				break
			}
		}
		return nil
	})

	for parent, path := range named {
		fallback[parent] = path
	}
	return fallback
}

// MimeType returns the image MIME type for a cover path.
func MimeType(path string) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
