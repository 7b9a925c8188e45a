// Package media locates FLAC sources on disk, either by walking a
// directory tree or by following album paths from the library database.
package media

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/owenvale/flacpress/internal/library"
)

// File is one FLAC source, with the album it came from when the
// database drove the discovery.
type File struct {
	Path    string
	AlbumID string
}

// FindFLACFiles walks dir recursively and returns every FLAC file.
func FindFLACFiles(dir string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsFLAC(path) {
			files = append(files, File{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FindAlbumFiles collects FLAC files from each album's resolved path.
// Albums whose recorded path is missing on disk fall back to a fuzzy
// directory search under baseDir. Problems with individual albums are
// logged and skipped; discovery never fails the whole run.
func FindAlbumFiles(albums []library.Album, baseDir string, log zerolog.Logger) []File {
	var files []File
	for _, album := range albums {
		if album.AbsolutePath == "" {
			log.Warn().Str("album", album.Title).Msg("album has no path")
			continue
		}
		found, err := FindFLACFiles(album.AbsolutePath)
		if err != nil {
			log.Warn().Str("path", album.AbsolutePath).Msg("album path missing, trying fuzzy match")
			found = fuzzyAlbumFiles(baseDir, album.Title, log)
		}
		if len(found) == 0 {
			log.Warn().Str("album", album.Title).Msg("no FLAC files found for album")
			continue
		}
		for i := range found {
			found[i].AlbumID = album.ID
		}
		log.Info().Str("album", album.Title).Int("files", len(found)).Msg("found album files")
		files = append(files, found...)
	}
	return files
}

// fuzzyAlbumFiles searches baseDir for a directory whose name contains
// the album title and returns the FLAC files of the first match.
func fuzzyAlbumFiles(baseDir, title string, log zerolog.Logger) []File {
	title = strings.ToLower(title)
	if title == "" || baseDir == "" {
		return nil
	}

	var match string
	filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), title) {
			match = path
			return fs.SkipAll
		}
		return nil
	})
	if match == "" {
		return nil
	}

	log.Info().Str("dir", match).Str("title", title).Msg("fuzzy album match")
	files, err := FindFLACFiles(match)
	if err != nil {
		return nil
	}
	return files
}
