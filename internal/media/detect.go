package media

import (
	"path/filepath"
	"strings"
)

var outputFormats = map[string]bool{
	"mp3":  true,
	"aac":  true,
	"ogg":  true,
	"opus": true,
	"m4a":  true,
	"flac": true,
}

// IsFLAC returns true if the path has a .flac extension.
func IsFLAC(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".flac")
}

// IsOutputFormat returns true if the format is a supported conversion target.
func IsOutputFormat(format string) bool {
	return outputFormats[strings.ToLower(format)]
}

// OutputFormatsList returns a human-readable list of supported conversion targets.
func OutputFormatsList() string {
	return "mp3, aac, ogg, opus, m4a, flac"
}
