// Package metainfo parses the sidecar metadata that rips commonly ship
// with: AlbumInfo.txt album descriptions, per-track .info files and
// cover art images.
package metainfo

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AlbumInfo is the parsed content of one AlbumInfo.txt file.
type AlbumInfo struct {
	ID          string
	Title       string
	Artist      string
	ReleaseDate string
	TrackCount  string
	Duration    string

	// Tracks maps track numbers to titles.
	Tracks map[int]string
}

const albumInfoName = "AlbumInfo.txt"

// FindAlbumInfo walks dir and parses every AlbumInfo.txt, keyed by the
// directory containing it. Unreadable files are skipped.
func FindAlbumInfo(dir string) map[string]AlbumInfo {
	found := make(map[string]AlbumInfo)
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != albumInfoName {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		found[filepath.Dir(path)] = ParseAlbumInfo(f)
		return nil
	})
	return found
}

// ParseAlbumInfo reads "[Key] value" lines. Numeric keys are track
// listings; the known named keys fill the album fields.
func ParseAlbumInfo(r io.Reader) AlbumInfo {
	info := AlbumInfo{Tracks: make(map[int]string)}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := splitBracketLine(sc.Text())
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(key); err == nil {
			info.Tracks[n] = value
			continue
		}
		switch key {
		case "ID":
			info.ID = value
		case "Title":
			info.Title = value
		case "Artists":
			info.Artist = value
		case "ReleaseDate":
			info.ReleaseDate = value
		case "SongNum":
			info.TrackCount = value
		case "Duration":
			info.Duration = value
		}
	}
	return info
}

// splitBracketLine parses "[Key] value" into its parts.
func splitBracketLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return "", "", false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", "", false
	}
	return line[1:end], strings.TrimSpace(line[end+1:]), true
}
