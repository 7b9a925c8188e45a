package flacfile

import (
	"fmt"
	"strconv"
	"strings"
)

// LevelUnknown is reported when no signal could be collected at all.
const LevelUnknown = -1

// LowConfidenceThreshold separates estimates callers can act on from
// ones they should treat as a shrug. Partial scans and very short
// streams are capped below it.
const LowConfidenceThreshold = 0.5

const (
	partialConfidenceCap       = 0.4
	minFramesForFullConfidence = 8
)

// Signal is one observed fact and the set of presets it is consistent
// with, in the order signals were evaluated.
type Signal struct {
	Name     string
	Observed string
	Levels   []int
}

// Estimate is the classifier output: a best-guess encoder preset with a
// confidence in [0,1] and the rationale behind it. An estimate is always
// produced; ambiguity lowers Confidence instead of withholding a result.
type Estimate struct {
	Level      int
	Confidence float64
	Signals    []Signal
}

// levelProfile is the expected shape of a stream produced at one preset.
// These are calibration values validated against fixture files, not
// protocol constants; FLAC itself records nothing about the preset.
type levelProfile struct {
	lpcMin, lpcMax     int
	partMin, partMax   int
	blockMin, blockMax int
	seekTable          bool
	padding            bool
	midSide            bool
	ratioMin, ratioMax float64
}

var levelTable = [9]levelProfile{
	0: {0, 8, 0, 4, 1, 2048, false, false, false, 0.70, 1.00},
	1: {0, 8, 0, 4, 1, 2048, true, true, true, 0.67, 0.75},
	2: {0, 8, 0, 4, 1, 2048, true, true, true, 0.65, 0.70},
	3: {1, 12, 0, 5, 2049, 65536, true, true, false, 0.62, 0.67},
	4: {1, 12, 0, 5, 2049, 65536, true, true, true, 0.60, 0.65},
	5: {1, 12, 0, 6, 2049, 65536, true, true, true, 0.58, 0.63},
	6: {1, 16, 0, 6, 2049, 65536, true, true, true, 0.56, 0.60},
	7: {8, 16, 0, 8, 2049, 65536, true, true, true, 0.54, 0.58},
	8: {12, 32, 4, 8, 2049, 65536, true, true, true, 0.50, 0.56},
}

// Classify maps aggregated statistics to a compression preset estimate.
// Every candidate level is scored by how many observed signals fall in
// its expected range; ties prefer the lower level. A parseable encoder
// tag short-circuits the heuristics entirely.
func Classify(st Stats) Estimate {
	if level, ok := parseLevelHint(st.EncoderHint); ok {
		return Estimate{
			Level:      level,
			Confidence: 1.0,
			Signals: []Signal{{
				Name:     "tag-declared",
				Observed: st.EncoderHint,
				Levels:   []int{level},
			}},
		}
	}

	signals := collectSignals(st)
	if len(signals) == 0 {
		return Estimate{Level: LevelUnknown}
	}

	var score [9]int
	for _, sig := range signals {
		for _, l := range sig.Levels {
			score[l]++
		}
	}
	best := 0
	for l := 1; l < len(score); l++ {
		if score[l] > score[best] {
			best = l
		}
	}

	confidence := float64(score[best]) / float64(len(signals))
	if st.Partial || st.FrameCount < minFramesForFullConfidence {
		if confidence > partialConfidenceCap {
			confidence = partialConfidenceCap
		}
	}
	return Estimate{Level: best, Confidence: confidence, Signals: signals}
}

func collectSignals(st Stats) []Signal {
	var signals []Signal
	add := func(name, observed string, match func(levelProfile) bool) {
		sig := Signal{Name: name, Observed: observed}
		for l, p := range levelTable {
			if match(p) {
				sig.Levels = append(sig.Levels, l)
			}
		}
		signals = append(signals, sig)
	}

	if st.FrameCount > 0 {
		add("max_lpc_order", strconv.Itoa(st.LPCOrderMax), func(p levelProfile) bool {
			return st.LPCOrderMax >= p.lpcMin && st.LPCOrderMax <= p.lpcMax
		})
		add("max_partition_order", strconv.Itoa(st.PartitionOrderMax), func(p levelProfile) bool {
			return st.PartitionOrderMax >= p.partMin && st.PartitionOrderMax <= p.partMax
		})
		add("block_size", strconv.Itoa(st.BlockSizeMax), func(p levelProfile) bool {
			return st.BlockSizeMax >= p.blockMin && st.BlockSizeMax <= p.blockMax
		})
	}

	add("seek_table", presence(st.HasSeekTable), func(p levelProfile) bool {
		return p.seekTable == st.HasSeekTable
	})
	add("padding", presence(st.HasPadding), func(p levelProfile) bool {
		return p.padding == st.HasPadding
	})

	if st.Stereo && st.FrameCount > 0 {
		decorrelated := st.DecorrelatedFrames > 0
		add("stereo_decorrelation", presence(decorrelated), func(p levelProfile) bool {
			return p.midSide == decorrelated
		})
	}

	if st.CompressionRatio > 0 {
		add("compression_ratio", fmt.Sprintf("%.4f", st.CompressionRatio), func(p levelProfile) bool {
			return st.CompressionRatio >= p.ratioMin && st.CompressionRatio <= p.ratioMax
		})
	}
	return signals
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}

// parseLevelHint extracts a declared compression level from an encoder
// tag value such as "flac 1.4.3 -8", "--compression-level-5" or a bare
// "8" from a COMPRESSION field. The -l flag is the LPC order, not the
// level, and is deliberately not matched.
func parseLevelHint(hint string) (int, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return 0, false
	}
	if len(hint) == 1 && hint[0] >= '0' && hint[0] <= '8' {
		return int(hint[0] - '0'), true
	}
	for _, tok := range strings.Fields(hint) {
		if len(tok) == 2 && tok[0] == '-' && tok[1] >= '0' && tok[1] <= '8' {
			return int(tok[1] - '0'), true
		}
		if rest, ok := strings.CutPrefix(tok, "--compression-level-"); ok {
			if len(rest) == 1 && rest[0] >= '0' && rest[0] <= '8' {
				return int(rest[0] - '0'), true
			}
		}
	}
	return 0, false
}
