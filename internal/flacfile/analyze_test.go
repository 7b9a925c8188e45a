package flacfile

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// buildFastPreset synthesizes the shape `flac -0` leaves behind: a bare
// streaminfo, 1152-sample blocks, constant predictors and no seek table
// or padding, sized for a weak compression ratio.
func buildFastPreset() []byte {
	var frames [][]byte
	audioBytes := 0
	for i := 0; i < 10; i++ {
		f := buildFrame(frameSpec{
			blockSizeCode: 3,
			blockSize:     1152,
			number:        uint64(i),
			subframes:     []subframeSpec{{kind: PredictorConstant}},
		})
		frames = append(frames, f)
		audioBytes += len(f)
	}
	info := streamInfoSpec{
		blockSizeMin:  1152,
		blockSizeMax:  1152,
		sampleRate:    44100,
		channels:      1,
		bitsPerSample: 16,
		totalSamples:  totalSamplesForRatio(audioBytes, 0.80),
	}
	return buildStream([][]byte{streamInfoBlock(info, true)}, frames)
}

// buildBestPreset synthesizes the shape `flac -8` leaves behind: seek
// table and padding blocks, 4096-sample blocks, a deep LPC subframe and
// high residual partition orders, sized for a strong compression ratio.
func buildBestPreset(tags []string) []byte {
	var frames [][]byte
	audioBytes := 0
	for i := 0; i < 10; i++ {
		sub := subframeSpec{kind: PredictorFixed, order: 1, partOrder: 8}
		if i == 0 {
			sub = subframeSpec{kind: PredictorLPC, order: 32, partOrder: 4, precision: 15}
		}
		f := buildFrame(frameSpec{
			blockSizeCode: 12,
			blockSize:     4096,
			number:        uint64(i),
			subframes:     []subframeSpec{sub},
		})
		frames = append(frames, f)
		audioBytes += len(f)
	}
	info := streamInfoSpec{
		blockSizeMin:  4096,
		blockSizeMax:  4096,
		sampleRate:    44100,
		channels:      1,
		bitsPerSample: 16,
		totalSamples:  totalSamplesForRatio(audioBytes, 0.53),
	}
	return buildStream([][]byte{
		streamInfoBlock(info, false),
		seekTableBlock(10, false),
		vorbisCommentBlock("test vendor", tags, false),
		paddingBlock(8192, true),
	}, frames)
}

func analyzeBytes(t *testing.T, data []byte) *Analysis {
	t.Helper()
	a, err := Analyze(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return a
}

func TestAnalyzeFastPreset(t *testing.T) {
	a := analyzeBytes(t, buildFastPreset())

	if a.Stats.FrameCount != 10 {
		t.Fatalf("FrameCount = %d, want 10", a.Stats.FrameCount)
	}
	if a.Stats.HasSeekTable || a.Stats.HasPadding {
		t.Fatalf("seek table / padding reported on bare stream")
	}
	if a.Estimate.Level != 0 {
		t.Fatalf("Level = %d, want 0 (signals: %+v)", a.Estimate.Level, a.Estimate.Signals)
	}
	if a.Estimate.Confidence < 0.7 {
		t.Fatalf("Confidence = %v, want >= 0.7", a.Estimate.Confidence)
	}
}

func TestAnalyzeBestPreset(t *testing.T) {
	a := analyzeBytes(t, buildBestPreset([]string{"TITLE=t"}))

	if a.Stats.LPCOrderMax != 32 {
		t.Fatalf("LPCOrderMax = %d, want 32", a.Stats.LPCOrderMax)
	}
	if a.Stats.PartitionOrderMax != 8 {
		t.Fatalf("PartitionOrderMax = %d, want 8", a.Stats.PartitionOrderMax)
	}
	if !a.Stats.HasSeekTable || !a.Stats.HasPadding {
		t.Fatalf("seek table / padding missing: %+v", a.Stats)
	}
	if !a.Stats.TagsBeforePadding {
		t.Fatalf("TagsBeforePadding = false with tags ahead of padding")
	}
	if a.Estimate.Level != 8 {
		t.Fatalf("Level = %d, want 8 (signals: %+v)", a.Estimate.Level, a.Estimate.Signals)
	}
	if a.Estimate.Confidence < 0.7 {
		t.Fatalf("Confidence = %v, want >= 0.7", a.Estimate.Confidence)
	}
}

func TestAnalyzeEncoderTagWins(t *testing.T) {
	// Frames shaped like preset 8, tag declaring preset 2.
	a := analyzeBytes(t, buildBestPreset([]string{"ENCODER_OPTIONS=-2"}))

	if a.Estimate.Level != 2 {
		t.Fatalf("Level = %d, want 2 from encoder tag", a.Estimate.Level)
	}
	if a.Estimate.Confidence != 1.0 {
		t.Fatalf("Confidence = %v, want 1.0 from encoder tag", a.Estimate.Confidence)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	data := buildBestPreset(nil)
	a1 := analyzeBytes(t, data)
	a2 := analyzeBytes(t, data)
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("repeated analysis differs:\n%+v\n%+v", a1, a2)
	}
}

func TestAnalyzeOffsetsAccountForWholeFile(t *testing.T) {
	data := buildBestPreset(nil)
	a := analyzeBytes(t, data)

	off := int64(len(flacSignature))
	for i, b := range a.Blocks {
		if b.Offset != off {
			t.Fatalf("block %d offset = %d, want %d", i, b.Offset, off)
		}
		off += 4 + b.Length
	}
	if a.Stats.AudioBytes != a.Size-off {
		t.Fatalf("AudioBytes = %d, want %d", a.Stats.AudioBytes, a.Size-off)
	}
}

func TestAnalyzeTruncatedMetadata(t *testing.T) {
	full := buildBestPreset(nil)
	s := readStreamBytes(t, full)
	data := full[:s.AudioStart-100] // cut inside the trailing padding block

	a, err := Analyze(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Analyze on truncated metadata = %v, want ErrTruncated", err)
	}
	if a == nil {
		t.Fatalf("no partial analysis returned")
	}
	if !a.Stats.Partial {
		t.Fatalf("Partial = false on truncated input")
	}
	if a.Estimate.Confidence >= LowConfidenceThreshold {
		t.Fatalf("Confidence = %v, want below %v", a.Estimate.Confidence, LowConfidenceThreshold)
	}
}

func TestAnalyzeBadSignatureNoAnalysis(t *testing.T) {
	a, err := Analyze(bytes.NewReader([]byte("OggS....")), 8)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("Analyze on non-FLAC = %v, want ErrFormat", err)
	}
	if a != nil {
		t.Fatalf("analysis returned for non-FLAC input")
	}
}

func TestAnalyzeDesyncLowersConfidence(t *testing.T) {
	clean := buildFastPreset()
	a1 := analyzeBytes(t, clean)

	corrupt := append([]byte{}, clean...)
	audioStart := int(a1.Size) - int(a1.Stats.AudioBytes)
	frameLen := int(a1.Stats.AudioBytes) / 10
	corrupt[audioStart+5*frameLen+4] ^= 0xff // CRC byte of the sixth frame

	a2 := analyzeBytes(t, corrupt)
	if a2.Stats.Desyncs != 1 {
		t.Fatalf("Desyncs = %d, want 1", a2.Stats.Desyncs)
	}
	if a2.Stats.FrameCount != 9 {
		t.Fatalf("FrameCount = %d, want 9 after one lost frame", a2.Stats.FrameCount)
	}
	if !a2.Stats.Partial {
		t.Fatalf("Partial = false after desync")
	}
	if a2.Estimate.Confidence >= a1.Estimate.Confidence {
		t.Fatalf("confidence did not drop: %v -> %v", a1.Estimate.Confidence, a2.Estimate.Confidence)
	}
}
