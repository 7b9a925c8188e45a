package metainfo

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TrackInfo is the parsed content of one per-track .info file.
type TrackInfo struct {
	Title       string
	Album       string
	Artist      string
	AlbumArtist string
	Copyright   string
	TrackNumber string
	TotalTracks string
	DiscNumber  string
	TotalDiscs  string
	ISRC        string
	ReleaseDate string
	Composer    string
	Lyrics      string
}

// FindTrackInfoFiles walks dir and associates each .info file with the
// FLAC file it describes, matching on the final " - " segment of the
// info file name. Returns FLAC path -> info path.
func FindTrackInfoFiles(dir string) map[string]string {
	found := make(map[string]string)
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".info") {
			return nil
		}
		base := strings.TrimSuffix(d.Name(), ".info")
		if i := strings.LastIndex(base, " - "); i >= 0 {
			base = base[i+3:]
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			return nil
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".flac") && strings.Contains(e.Name(), base) {
				found[filepath.Join(filepath.Dir(path), e.Name())] = path
				break
			}
		}
		return nil
	})
	return found
}

// ParseTrackInfoFile opens and parses one .info file.
func ParseTrackInfoFile(path string) (TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackInfo{}, err
	}
	defer f.Close()
	return ParseTrackInfo(f), nil
}

// ParseTrackInfo reads "Key: value" lines, plus a "# Lyrics" section
// running to the first blank line or end of input.
func ParseTrackInfo(r io.Reader) TrackInfo {
	var info TrackInfo

	fields := map[string]*string{
		"Title":        &info.Title,
		"Album":        &info.Album,
		"Artist":       &info.Artist,
		"Album Artist": &info.AlbumArtist,
		"Copyright":    &info.Copyright,
		"Track Number": &info.TrackNumber,
		"Total Tracks": &info.TotalTracks,
		"Disc Number":  &info.DiscNumber,
		"Total Discs":  &info.TotalDiscs,
		"ISRC":         &info.ISRC,
		"Release Date": &info.ReleaseDate,
		"Composer":     &info.Composer,
	}

	sc := bufio.NewScanner(r)
	inLyrics := false
	var lyrics []string
	for sc.Scan() {
		line := sc.Text()
		if inLyrics {
			if strings.TrimSpace(line) == "" {
				inLyrics = false
				continue
			}
			lyrics = append(lyrics, line)
			continue
		}
		if strings.TrimSpace(line) == "# Lyrics" {
			inLyrics = true
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if dst, ok := fields[strings.TrimSpace(key)]; ok {
			*dst = strings.TrimSpace(value)
		}
	}
	info.Lyrics = strings.Join(lyrics, "\n")
	return info
}
