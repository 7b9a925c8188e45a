package flacfile

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports that the input does not carry the FLAC stream
	// signature.
	ErrFormat = errors.New("not a FLAC stream")
	// ErrOrder reports a metadata block ordering violation, such as a
	// stream whose first metadata block is not StreamInfo.
	ErrOrder = errors.New("invalid FLAC metadata block order")
	// ErrTruncated reports that a declared length points past the end of
	// the input.
	ErrTruncated = errors.New("truncated FLAC stream")
	// ErrSyncLost reports that the frame scanner could not locate a valid
	// frame header where one was expected.
	ErrSyncLost = errors.New("lost FLAC frame sync")
)

func formatf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func orderf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOrder, fmt.Sprintf(format, args...))
}

func truncatedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTruncated, fmt.Sprintf(format, args...))
}

func syncLostf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyncLost, fmt.Sprintf(format, args...))
}
