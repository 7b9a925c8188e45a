// Package report renders analysis results as human-readable text or
// machine-readable JSON.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/owenvale/flacpress/internal/flacfile"
	"github.com/owenvale/flacpress/internal/util"
)

// ConfidenceWord maps a confidence value to its report wording.
func ConfidenceWord(c float64) string {
	switch {
	case c < 0.3:
		return "Very Low"
	case c < 0.5:
		return "Low"
	case c < 0.7:
		return "Medium"
	case c < 0.9:
		return "High"
	default:
		return "Very High"
	}
}

// WriteText renders the analysis of one file as an indented report.
func WriteText(w io.Writer, path string, a *flacfile.Analysis) {
	p := func(format string, args ...any) { fmt.Fprintf(w, format+"\n", args...) }

	p("")
	p("Analyzing FLAC file: %s", filepath.Base(path))
	p("%s", strings.Repeat("-", 60))
	p("File size: %s", util.FormatSize(a.Size))

	info := a.Info
	p("")
	p("Audio Properties:")
	p("  Channels: %d", info.Channels)
	p("  Sample Rate: %d Hz", info.SampleRate)
	p("  Bit Depth: %d bits", info.BitsPerSample)
	if info.SampleRate > 0 && info.TotalSamples > 0 {
		d := time.Duration(info.TotalSamples/uint64(info.SampleRate)) * time.Second
		p("  Duration: %s", util.FormatDuration(d))
	}

	p("")
	p("FLAC Properties:")
	p("  Block Size: %d to %d", info.BlockSizeMin, info.BlockSizeMax)
	if info.FrameSizeMin > 0 || info.FrameSizeMax > 0 {
		p("  Frame Size: %d to %d bytes", info.FrameSizeMin, info.FrameSizeMax)
	}
	p("  Metadata Blocks: %d", len(a.Blocks))
	for _, b := range a.Blocks {
		p("    %s (%d bytes)", b.Kind, b.Length)
	}

	st := a.Stats
	p("")
	p("Compression Analysis:")
	if pcm := info.UncompressedBytes(); pcm > 0 {
		p("  Uncompressed Size: %s", util.FormatSize(pcm))
	}
	if st.CompressionRatio > 0 {
		p("  Compression Ratio: %.4f (%.1f%% of original)", st.CompressionRatio, st.CompressionRatio*100)
	}
	p("  Frames Scanned: %d", st.FrameCount)
	if st.Desyncs > 0 {
		p("  Desyncs: %d (scan incomplete)", st.Desyncs)
	}

	p("")
	p("Compression Level Estimation:")
	est := a.Estimate
	if est.Level == flacfile.LevelUnknown {
		p("  Could not estimate compression level")
		return
	}
	p("  Estimated Level: %d (Confidence: %s, %.2f)", est.Level, ConfidenceWord(est.Confidence), est.Confidence)
	p("  Note: FLAC compression level is an estimation as it's not stored in the file")

	p("")
	p("Signals Used for Estimation:")
	for _, sig := range est.Signals {
		p("  %s: %s (levels %s)", sig.Name, sig.Observed, levelList(sig.Levels))
	}
}

func levelList(levels []int) string {
	if len(levels) == 0 {
		return "none"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ",")
}

// Record is the JSON shape of one analysis.
type Record struct {
	File       string              `json:"file"`
	Size       int64               `json:"size"`
	Info       flacfile.StreamInfo `json:"stream_info"`
	Stats      flacfile.Stats      `json:"stats"`
	Level      int                 `json:"estimated_level"`
	Confidence float64             `json:"confidence"`
	Signals    []flacfile.Signal   `json:"signals,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// NewRecord builds the JSON record for one analyzed file.
func NewRecord(path string, a *flacfile.Analysis, err error) Record {
	rec := Record{File: path, Level: flacfile.LevelUnknown}
	if err != nil {
		rec.Error = err.Error()
	}
	if a != nil {
		rec.Size = a.Size
		rec.Info = a.Info
		rec.Stats = a.Stats
		rec.Level = a.Estimate.Level
		rec.Confidence = a.Estimate.Confidence
		rec.Signals = a.Estimate.Signals
	}
	return rec
}

// WriteJSON renders the records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
