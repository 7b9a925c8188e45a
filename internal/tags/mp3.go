package tags

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"

	"github.com/owenvale/flacpress/internal/metainfo"
)

// WriteMP3 applies the metadata and optional cover image to an MP3
// file's ID3v2 tag.
func WriteMP3(path string, m Metadata, coverPath string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	setText := func(id, value string) {
		if value != "" {
			tag.AddTextFrame(id, tag.DefaultEncoding(), value)
		}
	}

	if m.Title != "" {
		tag.SetTitle(m.Title)
	}
	if m.Artist != "" {
		tag.SetArtist(m.Artist)
	}
	if m.Album != "" {
		tag.SetAlbum(m.Album)
	}
	setText("TPE2", m.AlbumArtist)
	setText("TRCK", m.TrackPosition())
	setText("TPOS", m.DiscPosition())
	setText("TYER", Year(m.ReleaseDate))
	setText("TSRC", m.ISRC)
	setText("TCOM", m.Composer)
	setText("TCOP", m.Copyright)

	if m.Lyrics != "" {
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          "eng",
			ContentDescriptor: "",
			Lyrics:            m.Lyrics,
		})
	}

	if coverPath != "" {
		art, err := os.ReadFile(coverPath)
		if err != nil {
			return fmt.Errorf("read cover art: %w", err)
		}
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    metainfo.MimeType(coverPath),
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     art,
		})
	}

	return tag.Save()
}
