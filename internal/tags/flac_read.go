package tags

import (
	"strings"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// ReadFLAC reads the Vorbis comments of a FLAC file into Metadata, for
// carrying existing tags through a conversion.
func ReadFLAC(path string) (Metadata, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Metadata{}, err
	}
	defer stream.Close()

	var m Metadata
	for _, block := range stream.Blocks {
		cmt, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, tag := range cmt.Tags {
			setVorbisField(&m, tag[0], tag[1])
		}
	}
	return m, nil
}

func setVorbisField(m *Metadata, name, value string) {
	switch strings.ToUpper(name) {
	case "TITLE":
		m.Title = value
	case "ARTIST":
		m.Artist = value
	case "ALBUMARTIST":
		m.AlbumArtist = value
	case "ALBUM":
		m.Album = value
	case "TRACKNUMBER":
		m.TrackNumber, m.TotalTracks = splitPosition(value, m.TotalTracks)
	case "TRACKTOTAL", "TOTALTRACKS":
		m.TotalTracks = value
	case "DISCNUMBER":
		m.DiscNumber, m.TotalDiscs = splitPosition(value, m.TotalDiscs)
	case "DISCTOTAL", "TOTALDISCS":
		m.TotalDiscs = value
	case "ISRC":
		m.ISRC = value
	case "DATE":
		m.ReleaseDate = value
	case "COPYRIGHT":
		m.Copyright = value
	case "COMPOSER":
		m.Composer = value
	case "LYRICS":
		m.Lyrics = value
	}
}

// splitPosition handles "3/12" style values; a bare number leaves the
// existing total untouched.
func splitPosition(value, total string) (string, string) {
	if number, rest, ok := strings.Cut(value, "/"); ok {
		return number, rest
	}
	return value, total
}
