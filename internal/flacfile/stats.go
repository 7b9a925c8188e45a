package flacfile

import "sort"

// Stats is the pure reduction of block and frame records into the
// signals the classifier consumes.
type Stats struct {
	FrameCount    int
	SubframeCount int

	// Predictors counts subframes by PredictorKind.
	Predictors [4]int

	LPCOrderMax int
	LPCOrderP90 int

	// PartitionOrders is a histogram of the maximum residual partition
	// order used per subframe.
	PartitionOrders   [16]int
	PartitionOrderMax int

	HasSeekTable   bool
	SeekPointCount int

	HasPadding   bool
	PaddingBytes int64
	// TagsBeforePadding records whether a VorbisComment block precedes
	// the first Padding block, the insertion order stock encoders use.
	TagsBeforePadding bool

	DecorrelatedFrames int
	IndependentFrames  int
	Stereo             bool

	FixedBlockSize bool
	BlockSizeMax   int

	// CompressionRatio is audio-region bytes over theoretical PCM bytes.
	// Zero when the stream does not declare its total sample count.
	CompressionRatio float64
	AudioBytes       int64

	Partial     bool
	Desyncs     int
	EncoderHint string
}

// Aggregate reduces a metadata walk and a frame scan into Stats. It is
// deterministic and touches no I/O.
func Aggregate(stream *Stream, scan *ScanResult) Stats {
	st := Stats{
		FrameCount:     len(scan.Frames),
		HasSeekTable:   false,
		SeekPointCount: len(stream.SeekPoints),
		Stereo:         stream.Info.Channels == 2,
		FixedBlockSize: stream.Info.FixedBlockSize(),
		AudioBytes:     scan.AudioBytes,
		Partial:        scan.Partial,
		Desyncs:        scan.Desyncs,
		EncoderHint:    stream.EncoderHint,
	}

	tagOffset, padOffset := int64(-1), int64(-1)
	for _, b := range stream.Blocks {
		switch b.Kind {
		case BlockSeekTable:
			st.HasSeekTable = true
		case BlockPadding:
			st.HasPadding = true
			st.PaddingBytes += b.Length
			if padOffset < 0 {
				padOffset = b.Offset
			}
		case BlockVorbisComment:
			if tagOffset < 0 {
				tagOffset = b.Offset
			}
		}
	}
	st.TagsBeforePadding = tagOffset >= 0 && padOffset >= 0 && tagOffset < padOffset

	var lpcOrders []int
	for _, f := range scan.Frames {
		if f.BlockSize > st.BlockSizeMax {
			st.BlockSizeMax = f.BlockSize
		}
		if f.Mode.Decorrelated() {
			st.DecorrelatedFrames++
		} else {
			st.IndependentFrames++
		}
		for _, sub := range f.Subframes {
			st.SubframeCount++
			st.Predictors[sub.Kind]++
			if sub.Kind == PredictorLPC {
				lpcOrders = append(lpcOrders, sub.Order)
				if sub.Order > st.LPCOrderMax {
					st.LPCOrderMax = sub.Order
				}
			}
			if sub.Kind == PredictorLPC || sub.Kind == PredictorFixed {
				st.PartitionOrders[sub.PartitionOrder]++
				if sub.PartitionOrder > st.PartitionOrderMax {
					st.PartitionOrderMax = sub.PartitionOrder
				}
			}
		}
	}

	if len(lpcOrders) > 0 {
		sort.Ints(lpcOrders)
		st.LPCOrderP90 = lpcOrders[90*(len(lpcOrders)-1)/100]
	}

	if pcm := stream.Info.UncompressedBytes(); pcm > 0 {
		st.CompressionRatio = float64(st.AudioBytes) / float64(pcm)
	}
	return st
}
