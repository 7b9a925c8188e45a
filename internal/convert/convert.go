// Package convert turns FLAC sources into target formats through
// ffmpeg, with tracking-based skip decisions and a copy fast path for
// FLAC targets already at the wanted compression level.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/owenvale/flacpress/internal/flacfile"
	"github.com/owenvale/flacpress/internal/library"
	"github.com/owenvale/flacpress/internal/media"
	"github.com/owenvale/flacpress/internal/metainfo"
	"github.com/owenvale/flacpress/internal/tags"
)

// FFmpegBin is the transcoder binary, overridable in tests.
var FFmpegBin = "ffmpeg"

// ErrSkipped reports that a source was already converted and up to date.
var ErrSkipped = errors.New("already converted")

// Options holds the per-run conversion settings.
type Options struct {
	InputDir  string
	OutputDir string
	Format    string
	Bitrate   string
	// Level is the FLAC compression level for FLAC targets.
	Level        int
	Force        bool
	SkipMetadata bool
	Lyrics       tags.LyricsMode
}

// Sidecars carries the metadata discovered around the sources.
type Sidecars struct {
	AlbumInfo  map[string]metainfo.AlbumInfo
	TrackInfos map[string]string
	CoverArt   map[string]string
}

// Converter converts single files. Tracking updates are left to the
// caller, which owns the tracking file.
type Converter struct {
	Opts     Options
	Sidecars Sidecars
	Log      zerolog.Logger
}

// OutputPath mirrors the source's position under InputDir into
// OutputDir, creating directories as needed, and swaps the extension
// for the target format.
func (c *Converter) OutputPath(source string) (string, error) {
	rel, err := filepath.Rel(c.Opts.InputDir, filepath.Dir(source))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = "."
	}
	dir := filepath.Join(c.Opts.OutputDir, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+"."+c.Opts.Format), nil
}

// ShouldConvert decides whether a source still needs converting, from
// the force flag, output existence and the tracking record's mtime.
func ShouldConvert(source, output string, tracking library.Tracking, force bool) bool {
	if force {
		return true
	}
	fi, err := os.Stat(output)
	if err != nil {
		return true
	}
	entry, ok := tracking[source]
	if !ok {
		return true
	}
	return fi.ModTime().Unix() != entry.ConvertedAt
}

// Convert converts one source file to the configured target, returning
// the output path. ErrSkipped means the tracking data showed the work
// was already done.
func (c *Converter) Convert(ctx context.Context, source media.File, tracking library.Tracking) (string, error) {
	output, err := c.OutputPath(source.Path)
	if err != nil {
		return "", err
	}
	if !ShouldConvert(source.Path, output, tracking, c.Opts.Force) {
		return output, ErrSkipped
	}

	if c.Opts.Format == "flac" {
		if err := c.convertToFLAC(ctx, source.Path, output); err != nil {
			return "", err
		}
	} else {
		if err := c.runFFmpeg(ctx, c.ffmpegArgs(source.Path, output)); err != nil {
			return "", err
		}
	}

	if !c.Opts.SkipMetadata {
		if err := c.applyMetadata(ctx, source.Path, output); err != nil {
			// Metadata enhancement is best effort; the audio converted.
			c.Log.Warn().Err(err).Str("file", output).Msg("metadata enhancement failed")
		}
	}
	return output, nil
}

// ffmpegArgs builds the transcode command line for non-FLAC targets.
func (c *Converter) ffmpegArgs(source, output string) []string {
	args := []string{
		"-i", source,
		"-y",
		"-v", "error",
		"-map_metadata", "0",
	}
	switch c.Opts.Format {
	case "mp3":
		args = append(args, "-codec:a", "libmp3lame", "-q:a", "0", "-b:a", c.Opts.Bitrate, "-id3v2_version", "3")
	case "ogg":
		args = append(args, "-codec:a", "libvorbis", "-q:a", "10")
	case "opus":
		args = append(args, "-codec:a", "libopus", "-b:a", c.Opts.Bitrate)
	case "aac":
		args = append(args, "-codec:a", "aac", "-b:a", c.Opts.Bitrate, "-strict", "experimental")
	case "m4a":
		args = append(args, "-codec:a", "aac", "-b:a", c.Opts.Bitrate, "-f", "mp4")
	}
	return append(args, output)
}

func flacArgs(source, output string, level int) []string {
	return []string{
		"-i", source,
		"-y",
		"-v", "error",
		"-map_metadata", "0",
		"-codec:a", "flac",
		"-compression_level", strconv.Itoa(level),
		output,
	}
}

// convertToFLAC re-encodes at the target level, or copies the source
// when the analyzer is confident it already sits at that level.
func (c *Converter) convertToFLAC(ctx context.Context, source, output string) error {
	analysis, err := flacfile.AnalyzeFile(source)
	if err == nil &&
		analysis.Estimate.Level == c.Opts.Level &&
		analysis.Estimate.Confidence >= flacfile.LowConfidenceThreshold {
		c.Log.Info().
			Str("file", filepath.Base(source)).
			Int("level", c.Opts.Level).
			Float64("confidence", analysis.Estimate.Confidence).
			Msg("source already at target level, copying")
		return copyFile(source, output)
	}
	if err != nil {
		c.Log.Debug().Err(err).Str("file", source).Msg("level estimate unavailable, re-encoding")
	}
	return c.runFFmpeg(ctx, flacArgs(source, output, c.Opts.Level))
}

func (c *Converter) runFFmpeg(ctx context.Context, args []string) error {
	bin, err := exec.LookPath(FFmpegBin)
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// applyMetadata merges sidecar metadata for the source and writes it to
// the output with the format's tag writer.
func (c *Converter) applyMetadata(ctx context.Context, source, output string) error {
	albumDir := filepath.Dir(source)

	var track metainfo.TrackInfo
	if infoPath, ok := c.Sidecars.TrackInfos[source]; ok {
		parsed, err := metainfo.ParseTrackInfoFile(infoPath)
		if err != nil {
			return err
		}
		track = parsed
	}
	album := c.Sidecars.AlbumInfo[albumDir]
	cover := c.Sidecars.CoverArt[albumDir]

	m := tags.Merge(track, album)
	if base, err := tags.ReadFLAC(source); err == nil {
		m = tags.Overlay(base, m)
	} else {
		c.Log.Debug().Err(err).Str("file", source).Msg("could not read source tags")
	}
	m.Lyrics = c.Opts.Lyrics.Apply(m.Lyrics)
	if m.Empty() && cover == "" {
		return nil
	}

	switch c.Opts.Format {
	case "mp3":
		return tags.WriteMP3(output, m, cover)
	case "flac":
		return tags.WriteFLAC(ctx, output, m, cover)
	default:
		// Other containers got "-map_metadata 0" during transcode; the
		// sidecar extras go in with a second ffmpeg pass.
		extra := tags.FFmpegMetadataArgs(m)
		if len(extra) == 0 {
			return nil
		}
		tmp := output + ".tagged" + filepath.Ext(output)
		args := []string{"-i", output, "-y", "-v", "error", "-codec", "copy"}
		args = append(args, extra...)
		args = append(args, tmp)
		if err := c.runFFmpeg(ctx, args); err != nil {
			return err
		}
		return os.Rename(tmp, output)
	}
}

func copyFile(source, output string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
