package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/owenvale/flacpress/internal/flacfile"
)

func sampleAnalysis() *flacfile.Analysis {
	return &flacfile.Analysis{
		Size: 24 * 1024 * 1024,
		Info: flacfile.StreamInfo{
			BlockSizeMin:  4096,
			BlockSizeMax:  4096,
			SampleRate:    44100,
			Channels:      2,
			BitsPerSample: 16,
			TotalSamples:  44100 * 200,
		},
		Blocks: []flacfile.BlockRecord{
			{Kind: flacfile.BlockStreamInfo, Length: 34},
			{Kind: flacfile.BlockPadding, Length: 8192, Last: true},
		},
		Stats: flacfile.Stats{
			FrameCount:       2153,
			CompressionRatio: 0.5612,
		},
		Estimate: flacfile.Estimate{
			Level:      8,
			Confidence: 0.83,
			Signals: []flacfile.Signal{
				{Name: "compression_ratio", Observed: "0.5612", Levels: []int{6, 7, 8}},
			},
		},
	}
}

func TestConfidenceWord(t *testing.T) {
	cases := []struct {
		c    float64
		want string
	}{
		{0.1, "Very Low"},
		{0.3, "Low"},
		{0.5, "Medium"},
		{0.7, "High"},
		{0.9, "Very High"},
		{1.0, "Very High"},
	}
	for _, tc := range cases {
		if got := ConfidenceWord(tc.c); got != tc.want {
			t.Fatalf("ConfidenceWord(%v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestWriteTextSections(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, "/music/album/track.flac", sampleAnalysis())
	out := buf.String()

	for _, want := range []string{
		"Analyzing FLAC file: track.flac",
		"File size: 24.00 MB",
		"Audio Properties:",
		"  Channels: 2",
		"  Sample Rate: 44100 Hz",
		"  Bit Depth: 16 bits",
		"  Duration: 3:20",
		"FLAC Properties:",
		"  Block Size: 4096 to 4096",
		"Compression Analysis:",
		"  Compression Ratio: 0.5612 (56.1% of original)",
		"Compression Level Estimation:",
		"  Estimated Level: 8 (Confidence: High, 0.83)",
		"compression_ratio: 0.5612 (levels 6,7,8)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteTextUnknownLevel(t *testing.T) {
	a := sampleAnalysis()
	a.Estimate = flacfile.Estimate{Level: flacfile.LevelUnknown}

	var buf bytes.Buffer
	WriteText(&buf, "x.flac", a)
	if !strings.Contains(buf.String(), "Could not estimate compression level") {
		t.Fatalf("unknown level not reported:\n%s", buf.String())
	}
}

func TestNewRecordWithError(t *testing.T) {
	rec := NewRecord("bad.flac", nil, errors.New("not a FLAC stream"))
	if rec.Error != "not a FLAC stream" {
		t.Fatalf("Error = %q", rec.Error)
	}
	if rec.Level != flacfile.LevelUnknown {
		t.Fatalf("Level = %d, want unknown", rec.Level)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	records := []Record{NewRecord("track.flac", sampleAnalysis(), nil)}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, records); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var back []Record
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back) != 1 || back[0].File != "track.flac" || back[0].Level != 8 {
		t.Fatalf("round trip = %+v", back)
	}
	if back[0].Stats.FrameCount != 2153 {
		t.Fatalf("stats lost in round trip: %+v", back[0].Stats)
	}
}
