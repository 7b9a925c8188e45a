// Package tags models track metadata and writes it to converted files.
package tags

import (
	"regexp"
	"strings"

	"github.com/owenvale/flacpress/internal/metainfo"
)

// Metadata is the merged tag set applied to one output file.
type Metadata struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	TrackNumber string
	TotalTracks string
	DiscNumber  string
	TotalDiscs  string
	ISRC        string
	ReleaseDate string
	Copyright   string
	Composer    string
	Lyrics      string
}

// Merge combines a track's own info with its album info. Track fields
// win; the album fills in title, artist and release date when missing.
func Merge(track metainfo.TrackInfo, album metainfo.AlbumInfo) Metadata {
	m := Metadata{
		Title:       track.Title,
		Artist:      track.Artist,
		AlbumArtist: track.AlbumArtist,
		Album:       track.Album,
		TrackNumber: track.TrackNumber,
		TotalTracks: track.TotalTracks,
		DiscNumber:  track.DiscNumber,
		TotalDiscs:  track.TotalDiscs,
		ISRC:        track.ISRC,
		ReleaseDate: track.ReleaseDate,
		Copyright:   track.Copyright,
		Composer:    track.Composer,
		Lyrics:      track.Lyrics,
	}
	if m.Album == "" {
		m.Album = album.Title
	}
	if m.Artist == "" {
		m.Artist = album.Artist
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = album.ReleaseDate
	}
	return m
}

// Overlay lays over on top of base: fields set in over win, base fills
// the blanks. Used to keep a source file's own tags underneath sidecar
// metadata.
func Overlay(base, over Metadata) Metadata {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&over.Title, base.Title)
	fill(&over.Artist, base.Artist)
	fill(&over.AlbumArtist, base.AlbumArtist)
	fill(&over.Album, base.Album)
	fill(&over.TrackNumber, base.TrackNumber)
	fill(&over.TotalTracks, base.TotalTracks)
	fill(&over.DiscNumber, base.DiscNumber)
	fill(&over.TotalDiscs, base.TotalDiscs)
	fill(&over.ISRC, base.ISRC)
	fill(&over.ReleaseDate, base.ReleaseDate)
	fill(&over.Copyright, base.Copyright)
	fill(&over.Composer, base.Composer)
	fill(&over.Lyrics, base.Lyrics)
	return over
}

// Empty reports whether no field carries a value.
func (m Metadata) Empty() bool {
	return m == Metadata{}
}

// TrackPosition renders "number/total", or just the number when the
// total is unknown.
func (m Metadata) TrackPosition() string {
	return position(m.TrackNumber, m.TotalTracks)
}

// DiscPosition renders the disc equivalent of TrackPosition.
func (m Metadata) DiscPosition() string {
	return position(m.DiscNumber, m.TotalDiscs)
}

func position(number, total string) string {
	if number == "" {
		return ""
	}
	if total == "" {
		return number
	}
	return number + "/" + total
}

var yearRE = regexp.MustCompile(`\d{4}`)

// Year extracts the four-digit year from a release date string.
func Year(date string) string {
	return yearRE.FindString(date)
}

// LyricsMode controls how lyrics are carried into output tags.
type LyricsMode string

const (
	LyricsNone        LyricsMode = "none"
	LyricsClean       LyricsMode = "clean"
	LyricsTimestamped LyricsMode = "timestamped"
)

// Valid reports whether the mode is one of the known values.
func (mode LyricsMode) Valid() bool {
	switch mode {
	case LyricsNone, LyricsClean, LyricsTimestamped:
		return true
	}
	return false
}

var timestampRE = regexp.MustCompile(`\[\d+:\d+\.\d+\]\s*`)

// Apply transforms lyrics according to the mode: none drops them, clean
// strips "[mm:ss.xx]" stamps, timestamped keeps them verbatim.
func (mode LyricsMode) Apply(lyrics string) string {
	switch mode {
	case LyricsNone:
		return ""
	case LyricsClean:
		return strings.TrimSpace(timestampRE.ReplaceAllString(lyrics, ""))
	}
	return lyrics
}
