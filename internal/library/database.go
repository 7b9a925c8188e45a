// Package library loads the JSON album database and the conversion
// tracking file that records which sources were already converted.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Album is one entry of the album database, keyed by album ID.
type Album struct {
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
	Year    string   `json:"year"`
	Path    string   `json:"path"`

	// ID is the database key, filled in on load.
	ID string `json:"-"`
	// AbsolutePath is Path resolved against the base directory.
	AbsolutePath string `json:"-"`
}

// Filter narrows a database load. Zero values match everything.
type Filter struct {
	// Artists is a comma-separated list; an album matches when any of
	// its artists contains any listed name, case-insensitively.
	Artists string
	AlbumID string
	Year    string
}

// Load reads the album database, applies the filter and resolves paths.
// An empty baseDir defaults to the directory containing the database
// file. Albums come back sorted by ID for deterministic iteration.
func Load(dbPath, baseDir string, f Filter) ([]Album, error) {
	raw, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	var entries map[string]Album
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse database %s: %w", dbPath, err)
	}

	if baseDir == "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Dir(abs)
	}

	wantArtists := splitArtists(f.Artists)

	var albums []Album
	for id, a := range entries {
		a.ID = id
		if f.AlbumID != "" && id != f.AlbumID {
			continue
		}
		if f.Year != "" && a.Year != f.Year {
			continue
		}
		if len(wantArtists) > 0 && !matchesArtists(a.Artists, wantArtists) {
			continue
		}
		a.AbsolutePath = resolvePath(baseDir, a.Path)
		albums = append(albums, a)
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].ID < albums[j].ID })
	return albums, nil
}

// Artists returns every distinct artist in the database with its album
// count, sorted by count descending then name.
func Artists(albums []Album) []ArtistCount {
	counts := make(map[string]int)
	for _, a := range albums {
		for _, artist := range a.Artists {
			counts[artist]++
		}
	}
	out := make([]ArtistCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ArtistCount{Name: name, Albums: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Albums != out[j].Albums {
			return out[i].Albums > out[j].Albums
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ArtistCount pairs an artist with the number of albums they appear on.
type ArtistCount struct {
	Name   string
	Albums int
}

func splitArtists(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func matchesArtists(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), w) {
				return true
			}
		}
	}
	return false
}

// resolvePath strips the "#/" marker some databases carry and joins the
// result onto the base directory.
func resolvePath(baseDir, path string) string {
	path = strings.TrimPrefix(path, "#/")
	return filepath.Clean(filepath.Join(baseDir, path))
}
