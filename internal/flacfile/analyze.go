// Package flacfile parses the structure of FLAC streams without
// decoding audio, and estimates which encoder compression preset (0-8)
// produced a file. Frame and subframe headers are decoded exactly;
// residual payloads are only measured, never expanded.
package flacfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Analysis is the full result of analyzing one FLAC input.
type Analysis struct {
	Size     int64
	Info     StreamInfo
	Blocks   []BlockRecord
	Stats    Stats
	Estimate Estimate
}

// Analyze runs the reader, scanner, aggregator and classifier over one
// input. On ErrTruncated inside the metadata region the analysis built
// from the complete records is returned alongside the error, with its
// confidence capped; signature and ordering violations return no
// analysis at all. Frame-region damage is not an error, it only marks
// the result partial.
func Analyze(src io.ReaderAt, size int64) (*Analysis, error) {
	stream, err := ReadStream(src, size)
	if err != nil {
		if errors.Is(err, ErrTruncated) && stream != nil {
			scan := &ScanResult{Partial: true}
			stats := Aggregate(stream, scan)
			return &Analysis{
				Size:     size,
				Info:     stream.Info,
				Blocks:   stream.Blocks,
				Stats:    stats,
				Estimate: Classify(stats),
			}, err
		}
		return nil, err
	}

	scan := ScanFrames(src, size, stream.Info, stream.AudioStart)
	stats := Aggregate(stream, scan)
	return &Analysis{
		Size:     size,
		Info:     stream.Info,
		Blocks:   stream.Blocks,
		Stats:    stats,
		Estimate: Classify(stats),
	}, nil
}

// AnalyzeFile opens and analyzes a FLAC file on disk.
func AnalyzeFile(path string) (*Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	return Analyze(f, fi.Size())
}
