package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	json "github.com/goccy/go-json"
)

// TrackingEntry records one completed conversion.
type TrackingEntry struct {
	OutputFile  string `json:"output_file"`
	AlbumID     string `json:"album_id,omitempty"`
	ConvertedAt int64  `json:"converted_at"`
}

// Tracking maps source paths to their conversion records.
type Tracking map[string]TrackingEntry

// LoadTracking reads a tracking file. A missing file is an empty
// tracking set, not an error.
func LoadTracking(path string) (Tracking, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Tracking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tracking: %w", err)
	}
	t := Tracking{}
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse tracking %s: %w", path, err)
	}
	return t, nil
}

// Record adds or replaces the entry for source. ConvertedAt is the
// output file's modification time, or zero when it cannot be read.
func (t Tracking) Record(source, output, albumID string) {
	var mtime int64
	if fi, err := os.Stat(output); err == nil {
		mtime = fi.ModTime().Unix()
	}
	t[source] = TrackingEntry{
		OutputFile:  output,
		AlbumID:     albumID,
		ConvertedAt: mtime,
	}
}

// Save writes the tracking set back to disk.
func (t Tracking) Save(path string) error {
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write tracking: %w", err)
	}
	return nil
}
