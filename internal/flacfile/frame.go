package flacfile

import (
	"errors"
	"io"
)

// ChannelMode is the channel assignment of one frame.
type ChannelMode uint8

const (
	ChannelsIndependent ChannelMode = iota
	ChannelLeftSide
	ChannelRightSide
	ChannelMidSide
)

func (m ChannelMode) String() string {
	switch m {
	case ChannelLeftSide:
		return "left-side"
	case ChannelRightSide:
		return "right-side"
	case ChannelMidSide:
		return "mid-side"
	}
	return "independent"
}

// Decorrelated reports whether the mode encodes stereo as a main and a
// difference channel.
func (m ChannelMode) Decorrelated() bool { return m != ChannelsIndependent }

// PredictorKind is the prediction strategy of one subframe.
type PredictorKind uint8

const (
	PredictorConstant PredictorKind = iota
	PredictorVerbatim
	PredictorFixed
	PredictorLPC
)

func (k PredictorKind) String() string {
	switch k {
	case PredictorConstant:
		return "constant"
	case PredictorVerbatim:
		return "verbatim"
	case PredictorFixed:
		return "fixed"
	}
	return "lpc"
}

// SubframeRecord describes one channel of one frame. Residual values are
// never decoded; only the entropy-coding parameters survive.
type SubframeRecord struct {
	Kind           PredictorKind
	Order          int
	Precision      int // quantized LPC coefficient precision, bits
	Shift          int // quantized LPC shift
	WastedBits     int
	PartitionOrder int
	Rice2          bool // 5-bit Rice parameters
}

// FrameRecord describes one decoded frame header.
type FrameRecord struct {
	Offset            int64
	BlockSize         int
	SampleRate        int // Hz; 0 means inherited from StreamInfo
	Channels          int
	Mode              ChannelMode
	BitsPerSample     int
	Number            uint64 // frame number, or first sample number for variable block size
	VariableBlockSize bool
	Subframes         []SubframeRecord
}

// ScanResult is everything the frame scanner collected from the audio
// region. Partial is set when scanning could not account for the whole
// region, whether through desync or truncation.
type ScanResult struct {
	Frames     []FrameRecord
	Partial    bool
	Desyncs    int
	AudioBytes int64
}

const (
	frameSync = 0x3ffe // 14 bits
	// resyncWindow bounds the forward byte scan after a corrupt header.
	resyncWindow = 1 << 20
)

var frameSampleRates = [12]int{0, 88200, 176400, 192000, 8000, 16000, 22050, 24000, 32000, 44100, 48000, 96000}

// ScanFrames walks the audio region from start, decoding frame and
// subframe headers only. Residual payloads are skipped with exact bit
// accounting so the cursor lands on the next frame boundary. A corrupt
// header triggers a bounded forward scan for the next valid sync; an
// unrecoverable desync or truncation ends the scan with Partial set.
func ScanFrames(src io.ReaderAt, size int64, info StreamInfo, start int64) *ScanResult {
	res := &ScanResult{AudioBytes: size - start}

	pos := start
	for pos < size {
		frame, next, err := parseFrame(src, size, info, pos)
		if err == nil {
			res.Frames = append(res.Frames, frame)
			pos = next
			continue
		}
		if errors.Is(err, ErrTruncated) {
			res.Partial = true
			break
		}
		res.Partial = true
		res.Desyncs++
		resumed, ok := resync(src, size, info, pos+1)
		if !ok {
			break
		}
		pos = resumed
	}

	if len(res.Frames) == 0 && size > start {
		res.Partial = true
	}
	return res
}

// resync scans forward byte by byte for the next parseable frame header,
// up to resyncWindow bytes.
func resync(src io.ReaderAt, size int64, info StreamInfo, from int64) (int64, bool) {
	limit := from + resyncWindow
	if limit > size-1 {
		limit = size - 1
	}
	var pair [2]byte
	for off := from; off < limit; off++ {
		if _, err := src.ReadAt(pair[:], off); err != nil {
			return 0, false
		}
		// 11111111 111110xx
		if pair[0] != 0xff || pair[1]&0xfc != 0xf8 {
			continue
		}
		if _, _, err := parseFrame(src, size, info, off); err == nil {
			return off, true
		}
	}
	return 0, false
}

func parseFrame(src io.ReaderAt, size int64, info StreamInfo, off int64) (FrameRecord, int64, error) {
	c := newBitCursor(src, size, off)

	sync, err := c.readBits(14)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	if sync != frameSync {
		return FrameRecord{}, 0, syncLostf("no sync code at byte %d", off)
	}
	fixed, err := c.readBits(2) // reserved bit + blocking strategy
	if err != nil {
		return FrameRecord{}, 0, err
	}
	if fixed&2 != 0 {
		return FrameRecord{}, 0, syncLostf("reserved header bit set at byte %d", off)
	}
	variable := fixed&1 != 0

	bsCode, err := c.readBits(4)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	srCode, err := c.readBits(4)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	chCode, err := c.readBits(4)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	bpsCode, err := c.readBits(3)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	reserved, err := c.readBits(1)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	if reserved != 0 {
		return FrameRecord{}, 0, syncLostf("reserved header bit set at byte %d", off)
	}

	number, err := readCodedNumber(c)
	if err != nil {
		return FrameRecord{}, 0, err
	}

	blockSize, err := decodeBlockSize(c, bsCode)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	sampleRate, err := decodeSampleRate(c, srCode)
	if err != nil {
		return FrameRecord{}, 0, err
	}

	channels, mode, err := decodeChannels(chCode)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	bps, err := decodeSampleSize(bpsCode, info)
	if err != nil {
		return FrameRecord{}, 0, err
	}

	// The header is byte aligned here; everything before the CRC byte
	// participates in the CRC-8.
	headerLen := c.byteOffset() - off
	header := make([]byte, headerLen)
	if _, err := src.ReadAt(header, off); err != nil {
		return FrameRecord{}, 0, err
	}
	crc, err := c.readBits(8)
	if err != nil {
		return FrameRecord{}, 0, err
	}
	if crc8(header) != byte(crc) {
		return FrameRecord{}, 0, syncLostf("frame header CRC mismatch at byte %d", off)
	}

	frame := FrameRecord{
		Offset:            off,
		BlockSize:         blockSize,
		SampleRate:        sampleRate,
		Channels:          channels,
		Mode:              mode,
		BitsPerSample:     bps,
		Number:            number,
		VariableBlockSize: variable,
		Subframes:         make([]SubframeRecord, 0, channels),
	}
	for ch := 0; ch < channels; ch++ {
		sub, err := parseSubframe(c, blockSize, bps+sideBits(mode, ch))
		if err != nil {
			return FrameRecord{}, 0, err
		}
		frame.Subframes = append(frame.Subframes, sub)
	}

	c.alignByte()
	if err := c.skipBits(16); err != nil { // frame CRC-16
		return FrameRecord{}, 0, err
	}
	return frame, c.byteOffset(), nil
}

// sideBits returns the extra sample bit the difference channel of a
// decorrelated stereo frame carries.
func sideBits(mode ChannelMode, ch int) int {
	switch mode {
	case ChannelLeftSide, ChannelMidSide:
		if ch == 1 {
			return 1
		}
	case ChannelRightSide:
		if ch == 0 {
			return 1
		}
	}
	return 0
}

func decodeBlockSize(c *bitCursor, code uint64) (int, error) {
	switch {
	case code == 0:
		return 0, syncLostf("reserved block size code")
	case code == 1:
		return 192, nil
	case code <= 5:
		return 576 << (code - 2), nil
	case code == 6:
		v, err := c.readBits(8)
		return int(v) + 1, err
	case code == 7:
		v, err := c.readBits(16)
		return int(v) + 1, err
	}
	return 256 << (code - 8), nil
}

func decodeSampleRate(c *bitCursor, code uint64) (int, error) {
	switch {
	case code < uint64(len(frameSampleRates)):
		return frameSampleRates[code], nil
	case code == 12:
		v, err := c.readBits(8)
		return int(v) * 1000, err
	case code == 13:
		v, err := c.readBits(16)
		return int(v), err
	case code == 14:
		v, err := c.readBits(16)
		return int(v) * 10, err
	}
	return 0, syncLostf("invalid sample rate code")
}

func decodeChannels(code uint64) (int, ChannelMode, error) {
	switch {
	case code <= 7:
		return int(code) + 1, ChannelsIndependent, nil
	case code == 8:
		return 2, ChannelLeftSide, nil
	case code == 9:
		return 2, ChannelRightSide, nil
	case code == 10:
		return 2, ChannelMidSide, nil
	}
	return 0, 0, syncLostf("reserved channel assignment %d", code)
}

func decodeSampleSize(code uint64, info StreamInfo) (int, error) {
	switch code {
	case 0:
		return int(info.BitsPerSample), nil
	case 1:
		return 8, nil
	case 2:
		return 12, nil
	case 4:
		return 16, nil
	case 5:
		return 20, nil
	case 6:
		return 24, nil
	case 7:
		return 32, nil
	}
	return 0, syncLostf("reserved sample size code %d", code)
}

// readCodedNumber reads the extended UTF-8 style frame/sample number of
// up to 7 bytes.
func readCodedNumber(c *bitCursor) (uint64, error) {
	b0, err := c.readBits(8)
	if err != nil {
		return 0, err
	}
	if b0&0x80 == 0 {
		return b0, nil
	}
	lead := 0
	for mask := uint64(0x80); b0&mask != 0; mask >>= 1 {
		lead++
	}
	if lead < 2 || lead > 7 {
		return 0, syncLostf("malformed coded number lead byte %#x", b0)
	}
	v := b0 & (0x7f >> lead)
	for i := 1; i < lead; i++ {
		b, err := c.readBits(8)
		if err != nil {
			return 0, err
		}
		if b&0xc0 != 0x80 {
			return 0, syncLostf("malformed coded number continuation byte %#x", b)
		}
		v = v<<6 | b&0x3f
	}
	return v, nil
}

func parseSubframe(c *bitCursor, blockSize, bps int) (SubframeRecord, error) {
	pad, err := c.readBits(1)
	if err != nil {
		return SubframeRecord{}, err
	}
	if pad != 0 {
		return SubframeRecord{}, syncLostf("subframe padding bit set")
	}
	typ, err := c.readBits(6)
	if err != nil {
		return SubframeRecord{}, err
	}
	wastedFlag, err := c.readBits(1)
	if err != nil {
		return SubframeRecord{}, err
	}

	var sub SubframeRecord
	if wastedFlag != 0 {
		k, err := c.readUnary()
		if err != nil {
			return SubframeRecord{}, err
		}
		sub.WastedBits = k + 1
		bps -= sub.WastedBits
		if bps <= 0 {
			return SubframeRecord{}, syncLostf("wasted bits %d consume the whole sample", sub.WastedBits)
		}
	}

	switch {
	case typ == 0:
		sub.Kind = PredictorConstant
		return sub, c.skipBits(int64(bps))
	case typ == 1:
		sub.Kind = PredictorVerbatim
		return sub, c.skipBits(int64(bps) * int64(blockSize))
	case typ >= 8 && typ <= 12:
		sub.Kind = PredictorFixed
		sub.Order = int(typ) - 8
		if err := c.skipBits(int64(sub.Order) * int64(bps)); err != nil {
			return SubframeRecord{}, err
		}
	case typ >= 32:
		sub.Kind = PredictorLPC
		sub.Order = int(typ) - 31
		if err := c.skipBits(int64(sub.Order) * int64(bps)); err != nil {
			return SubframeRecord{}, err
		}
		prec, err := c.readBits(4)
		if err != nil {
			return SubframeRecord{}, err
		}
		if prec == 15 {
			return SubframeRecord{}, syncLostf("invalid LPC coefficient precision")
		}
		sub.Precision = int(prec) + 1
		shift, err := c.readBits(5)
		if err != nil {
			return SubframeRecord{}, err
		}
		sub.Shift = int(shift)
		if err := c.skipBits(int64(sub.Order) * int64(sub.Precision)); err != nil {
			return SubframeRecord{}, err
		}
	default:
		return SubframeRecord{}, syncLostf("reserved subframe type %d", typ)
	}

	po, rice2, err := skipResidual(c, blockSize, sub.Order)
	if err != nil {
		return SubframeRecord{}, err
	}
	sub.PartitionOrder = po
	sub.Rice2 = rice2
	return sub, nil
}

// skipResidual walks the residual section of a FIXED or LPC subframe
// without reconstructing any sample values. Rice-coded partitions still
// have to be traversed code by code, since their length is data
// dependent; escaped partitions skip in one step.
func skipResidual(c *bitCursor, blockSize, order int) (int, bool, error) {
	method, err := c.readBits(2)
	if err != nil {
		return 0, false, err
	}
	if method > 1 {
		return 0, false, syncLostf("reserved residual coding method %d", method)
	}
	rice2 := method == 1
	paramBits := uint(4)
	escape := uint64(0x0f)
	if rice2 {
		paramBits = 5
		escape = 0x1f
	}

	poBits, err := c.readBits(4)
	if err != nil {
		return 0, false, err
	}
	po := int(poBits)
	partitions := 1 << po
	if blockSize%partitions != 0 {
		return 0, false, syncLostf("partition order %d does not divide block size %d", po, blockSize)
	}
	per := blockSize >> po
	if per < order {
		return 0, false, syncLostf("partition order %d leaves no room for predictor order %d", po, order)
	}

	for p := 0; p < partitions; p++ {
		count := per
		if p == 0 {
			count = per - order
		}
		param, err := c.readBits(paramBits)
		if err != nil {
			return 0, false, err
		}
		if param == escape {
			width, err := c.readBits(5)
			if err != nil {
				return 0, false, err
			}
			if err := c.skipBits(int64(count) * int64(width)); err != nil {
				return 0, false, err
			}
			continue
		}
		for i := 0; i < count; i++ {
			if _, err := c.readUnary(); err != nil {
				return 0, false, err
			}
			if err := c.skipBits(int64(param)); err != nil {
				return 0, false, err
			}
		}
	}
	return po, rice2, nil
}
