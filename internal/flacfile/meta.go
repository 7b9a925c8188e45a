package flacfile

import (
	"encoding/binary"
	"io"
	"strings"
)

const flacSignature = "fLaC"

// BlockKind identifies a FLAC metadata block type.
type BlockKind uint8

const (
	BlockStreamInfo BlockKind = iota
	BlockPadding
	BlockApplication
	BlockSeekTable
	BlockVorbisComment
	BlockCueSheet
	BlockPicture
	BlockUnknown BlockKind = 127
)

func (k BlockKind) String() string {
	switch k {
	case BlockStreamInfo:
		return "streaminfo"
	case BlockPadding:
		return "padding"
	case BlockApplication:
		return "application"
	case BlockSeekTable:
		return "seektable"
	case BlockVorbisComment:
		return "vorbis-comment"
	case BlockCueSheet:
		return "cuesheet"
	case BlockPicture:
		return "picture"
	}
	return "unknown"
}

func blockKind(code uint8) BlockKind {
	if code <= uint8(BlockPicture) {
		return BlockKind(code)
	}
	return BlockUnknown
}

// StreamInfo carries the facts from the mandatory first metadata block.
type StreamInfo struct {
	BlockSizeMin  uint16
	BlockSizeMax  uint16
	FrameSizeMin  uint32 // bytes; 0 = unknown
	FrameSizeMax  uint32 // bytes; 0 = unknown
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	TotalSamples  uint64 // inter-channel samples; 0 = unknown
	MD5           [16]byte
}

// FixedBlockSize reports whether the stream declares a single block size.
func (si StreamInfo) FixedBlockSize() bool {
	return si.BlockSizeMin == si.BlockSizeMax && si.BlockSizeMin != 0
}

// UncompressedBytes returns the theoretical PCM size of the stream.
func (si StreamInfo) UncompressedBytes() int64 {
	return int64(si.TotalSamples) * int64(si.Channels) * int64(si.BitsPerSample) / 8
}

// BlockRecord describes one metadata block without its bulk payload.
type BlockRecord struct {
	Kind     BlockKind
	TypeCode uint8
	Offset   int64 // of the 4-byte block header
	Length   int64 // declared body length
	Last     bool
}

// SeekPoint is one entry of a SeekTable block.
type SeekPoint struct {
	SampleNumber uint64
	ByteOffset   uint64
	FrameSamples uint16
}

const seekPointPlaceholder = ^uint64(0)

// Placeholder reports whether the point is an unpopulated placeholder.
func (p SeekPoint) Placeholder() bool { return p.SampleNumber == seekPointPlaceholder }

// Stream is the result of walking the metadata region of a FLAC file.
type Stream struct {
	Info       StreamInfo
	Blocks     []BlockRecord
	SeekPoints []SeekPoint
	// EncoderHint is the verbatim value of the first tag field naming the
	// encoder, if any. Advisory only; tags are routinely stripped.
	EncoderHint string
	// AudioStart is the byte offset of the first audio frame.
	AudioStart int64
}

// Hint field names checked in VorbisComment blocks, most specific first.
var encoderHintFields = []string{"ENCODER_OPTIONS", "ENCODERSETTINGS", "COMPRESSION", "ENCODER", "ENCODED_BY"}

// ReadStream validates the stream signature and walks all metadata
// blocks. Bulk payloads (pictures, application data) are skipped by
// offset; only StreamInfo, SeekTable and VorbisComment bodies are
// parsed. On ErrTruncated the blocks read so far are still returned.
func ReadStream(src io.ReaderAt, size int64) (*Stream, error) {
	var sig [4]byte
	if size < int64(len(sig)) {
		return nil, formatf("input of %d bytes is shorter than the stream signature", size)
	}
	if _, err := src.ReadAt(sig[:], 0); err != nil {
		return nil, err
	}
	if string(sig[:]) != flacSignature {
		return nil, formatf("bad signature %q", sig[:])
	}

	s := &Stream{}
	off := int64(len(sig))
	for {
		var hdr [4]byte
		if off+int64(len(hdr)) > size {
			return s, truncatedf("metadata block header at byte %d passes end of input", off)
		}
		if _, err := src.ReadAt(hdr[:], off); err != nil {
			return s, err
		}
		last := hdr[0]&0x80 != 0
		code := hdr[0] & 0x7f
		length := int64(hdr[1])<<16 | int64(hdr[2])<<8 | int64(hdr[3])

		rec := BlockRecord{
			Kind:     blockKind(code),
			TypeCode: code,
			Offset:   off,
			Length:   length,
			Last:     last,
		}
		if len(s.Blocks) == 0 && rec.Kind != BlockStreamInfo {
			return s, orderf("first metadata block is %s, want streaminfo", rec.Kind)
		}
		if len(s.Blocks) > 0 && rec.Kind == BlockStreamInfo {
			return s, orderf("duplicate streaminfo block at byte %d", off)
		}
		bodyOff := off + int64(len(hdr))
		if bodyOff+length > size {
			return s, truncatedf("block %s at byte %d declares %d body bytes, %d available",
				rec.Kind, off, length, size-bodyOff)
		}

		switch rec.Kind {
		case BlockStreamInfo:
			info, err := readStreamInfo(src, bodyOff, length)
			if err != nil {
				return s, err
			}
			s.Info = info
		case BlockSeekTable:
			points, err := readSeekTable(src, bodyOff, length)
			if err != nil {
				return s, err
			}
			s.SeekPoints = points
		case BlockVorbisComment:
			if s.EncoderHint == "" {
				s.EncoderHint = readEncoderHint(src, bodyOff, length)
			}
		}

		s.Blocks = append(s.Blocks, rec)
		off = bodyOff + length
		if last {
			break
		}
	}

	s.AudioStart = off
	return s, nil
}

const streamInfoLen = 34

func readStreamInfo(src io.ReaderAt, off, length int64) (StreamInfo, error) {
	var si StreamInfo
	if length != streamInfoLen {
		return si, formatf("streaminfo block of %d bytes, want %d", length, streamInfoLen)
	}
	var raw [streamInfoLen]byte
	if _, err := src.ReadAt(raw[:], off); err != nil {
		return si, err
	}

	si.BlockSizeMin = binary.BigEndian.Uint16(raw[0:2])
	si.BlockSizeMax = binary.BigEndian.Uint16(raw[2:4])
	si.FrameSizeMin = uint32(raw[4])<<16 | uint32(raw[5])<<8 | uint32(raw[6])
	si.FrameSizeMax = uint32(raw[7])<<16 | uint32(raw[8])<<8 | uint32(raw[9])

	// sample_rate(20) channels-1(3) bps-1(5) total_samples(36)
	packed := binary.BigEndian.Uint64(raw[10:18])
	si.SampleRate = uint32(packed >> 44)
	si.Channels = uint8(packed>>41&0x7) + 1
	si.BitsPerSample = uint8(packed>>36&0x1f) + 1
	si.TotalSamples = packed & (1<<36 - 1)
	copy(si.MD5[:], raw[18:])

	if si.SampleRate == 0 {
		return si, formatf("streaminfo declares sample rate 0")
	}
	return si, nil
}

const seekPointLen = 18

func readSeekTable(src io.ReaderAt, off, length int64) ([]SeekPoint, error) {
	if length%seekPointLen != 0 {
		return nil, formatf("seektable of %d bytes is not a multiple of %d", length, seekPointLen)
	}
	points := make([]SeekPoint, length/seekPointLen)
	raw := make([]byte, length)
	if _, err := src.ReadAt(raw, off); err != nil {
		return nil, err
	}
	for i := range points {
		p := raw[i*seekPointLen:]
		points[i] = SeekPoint{
			SampleNumber: binary.BigEndian.Uint64(p[0:8]),
			ByteOffset:   binary.BigEndian.Uint64(p[8:16]),
			FrameSamples: binary.BigEndian.Uint16(p[16:18]),
		}
	}
	return points, nil
}

// readEncoderHint scans a VorbisComment body for an encoder-identifying
// field. Vorbis comment framing is little-endian, unlike the rest of
// FLAC. Malformed tag blocks yield no hint rather than an error; the
// classifier never depends on tags being present.
func readEncoderHint(src io.ReaderAt, off, length int64) string {
	raw := make([]byte, length)
	if _, err := src.ReadAt(raw, off); err != nil {
		return ""
	}

	next := func() ([]byte, bool) {
		if len(raw) < 4 {
			return nil, false
		}
		n := binary.LittleEndian.Uint32(raw)
		raw = raw[4:]
		if int64(n) > int64(len(raw)) {
			return nil, false
		}
		field := raw[:n]
		raw = raw[n:]
		return field, true
	}

	if _, ok := next(); !ok { // vendor string
		return ""
	}
	if len(raw) < 4 {
		return ""
	}
	count := binary.LittleEndian.Uint32(raw)
	raw = raw[4:]

	best := -1
	hint := ""
	for i := uint32(0); i < count; i++ {
		field, ok := next()
		if !ok {
			break
		}
		name, value, ok := strings.Cut(string(field), "=")
		if !ok {
			continue
		}
		for rank, want := range encoderHintFields {
			if strings.EqualFold(name, want) && (best == -1 || rank < best) {
				best = rank
				hint = value
			}
		}
	}
	return hint
}
