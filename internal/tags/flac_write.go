package tags

import (
	"context"
	"fmt"
	"os/exec"
)

// MetaflacBin is the tag writer binary for FLAC outputs, overridable in
// tests.
var MetaflacBin = "metaflac"

// WriteFLAC applies the metadata and optional cover image to a FLAC
// file through metaflac. Existing tags are replaced field by field.
func WriteFLAC(ctx context.Context, path string, m Metadata, coverPath string) error {
	bin, err := exec.LookPath(MetaflacBin)
	if err != nil {
		return fmt.Errorf("metaflac not found in PATH: %w", err)
	}

	args := MetaflacArgs(m, coverPath)
	if len(args) == 0 {
		return nil
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("metaflac: %w: %s", err, out)
	}
	return nil
}

// MetaflacArgs builds the metaflac argument list for the metadata,
// without the trailing file path.
func MetaflacArgs(m Metadata, coverPath string) []string {
	var args []string
	set := func(name, value string) {
		if value != "" {
			args = append(args, "--remove-tag="+name, "--set-tag="+name+"="+value)
		}
	}

	set("TITLE", m.Title)
	set("ARTIST", m.Artist)
	set("ALBUMARTIST", m.AlbumArtist)
	set("ALBUM", m.Album)
	set("TRACKNUMBER", m.TrackPosition())
	set("DISCNUMBER", m.DiscPosition())
	set("ISRC", m.ISRC)
	set("DATE", Year(m.ReleaseDate))
	set("COPYRIGHT", m.Copyright)
	set("COMPOSER", m.Composer)
	set("LYRICS", m.Lyrics)

	if coverPath != "" {
		args = append(args, "--import-picture-from="+coverPath)
	}
	return args
}

// FFmpegMetadataArgs renders the metadata as ffmpeg "-metadata" pairs,
// used for container formats without a dedicated tag writer.
func FFmpegMetadataArgs(m Metadata) []string {
	var args []string
	set := func(name, value string) {
		if value != "" {
			args = append(args, "-metadata", name+"="+value)
		}
	}

	set("title", m.Title)
	set("artist", m.Artist)
	set("album_artist", m.AlbumArtist)
	set("album", m.Album)
	set("track", m.TrackPosition())
	set("disc", m.DiscPosition())
	set("date", Year(m.ReleaseDate))
	set("composer", m.Composer)
	set("copyright", m.Copyright)
	set("lyrics", m.Lyrics)
	return args
}
