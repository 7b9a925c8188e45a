package flacfile

import "encoding/binary"

// Test fixtures are synthesized in memory: a bit writer mirroring the
// cursor's MSB-first order, plus builders for metadata blocks and
// frames with known header fields.

type bitWriter struct {
	buf  []byte
	nbit uint
}

func (w *bitWriter) writeBits(v uint64, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		if w.nbit == 0 {
			w.buf = append(w.buf, 0)
		}
		bit := byte(v>>uint(i)) & 1
		w.buf[len(w.buf)-1] |= bit << (7 - w.nbit)
		w.nbit = (w.nbit + 1) & 7
	}
}

func (w *bitWriter) align() { w.nbit = 0 }

type streamInfoSpec struct {
	blockSizeMin, blockSizeMax uint16
	sampleRate                 uint32
	channels                   uint8
	bitsPerSample              uint8
	totalSamples               uint64
}

func blockHeader(code uint8, length int, last bool) []byte {
	b0 := code
	if last {
		b0 |= 0x80
	}
	return []byte{b0, byte(length >> 16), byte(length >> 8), byte(length)}
}

func streamInfoBlock(spec streamInfoSpec, last bool) []byte {
	body := make([]byte, streamInfoLen)
	binary.BigEndian.PutUint16(body[0:2], spec.blockSizeMin)
	binary.BigEndian.PutUint16(body[2:4], spec.blockSizeMax)
	// min/max frame size stay 0 (unknown)
	packed := uint64(spec.sampleRate)<<44 |
		uint64(spec.channels-1)<<41 |
		uint64(spec.bitsPerSample-1)<<36 |
		spec.totalSamples
	binary.BigEndian.PutUint64(body[10:18], packed)
	return append(blockHeader(0, len(body), last), body...)
}

func paddingBlock(n int, last bool) []byte {
	return append(blockHeader(1, n, last), make([]byte, n)...)
}

func seekTableBlock(points int, last bool) []byte {
	body := make([]byte, points*seekPointLen)
	for i := 0; i < points; i++ {
		p := body[i*seekPointLen:]
		binary.BigEndian.PutUint64(p[0:8], uint64(i)*4096)
		binary.BigEndian.PutUint64(p[8:16], uint64(i)*1000)
		binary.BigEndian.PutUint16(p[16:18], 4096)
	}
	return append(blockHeader(3, len(body), last), body...)
}

func vorbisCommentBlock(vendor string, tags []string, last bool) []byte {
	var body []byte
	le32 := func(v uint32) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		return b[:]
	}
	body = append(body, le32(uint32(len(vendor)))...)
	body = append(body, vendor...)
	body = append(body, le32(uint32(len(tags)))...)
	for _, tag := range tags {
		body = append(body, le32(uint32(len(tag)))...)
		body = append(body, tag...)
	}
	return append(blockHeader(4, len(body), last), body...)
}

// subframeSpec describes one synthesized subframe. Orders above zero
// with kind fixed/lpc get a Rice residual with the given partition
// order and a parameter of 3.
type subframeSpec struct {
	kind      PredictorKind
	order     int
	partOrder int
	precision int // lpc only
}

type frameSpec struct {
	blockSizeCode uint64 // 3 = 1152, 12 = 4096
	blockSize     int
	number        uint64
	subframes     []subframeSpec
}

func buildFrame(spec frameSpec) []byte {
	w := &bitWriter{}
	w.writeBits(frameSync, 14)
	w.writeBits(0, 1) // reserved
	w.writeBits(0, 1) // fixed block size stream
	w.writeBits(spec.blockSizeCode, 4)
	w.writeBits(9, 4) // 44.1 kHz
	w.writeBits(uint64(len(spec.subframes)-1), 4)
	w.writeBits(4, 3) // 16 bits per sample
	w.writeBits(0, 1)
	w.writeBits(spec.number, 8) // single byte coded number; keep below 128

	w.writeBits(uint64(crc8(w.buf)), 8)

	for _, sub := range spec.subframes {
		writeSubframe(w, spec.blockSize, sub)
	}
	w.align()
	w.writeBits(0, 16) // frame CRC-16, not validated by the scanner
	return w.buf
}

func writeSubframe(w *bitWriter, blockSize int, spec subframeSpec) {
	const bps = 16
	w.writeBits(0, 1)
	switch spec.kind {
	case PredictorConstant:
		w.writeBits(0, 6)
		w.writeBits(0, 1)
		w.writeBits(0x1234, bps)
		return
	case PredictorVerbatim:
		w.writeBits(1, 6)
		w.writeBits(0, 1)
		for i := 0; i < blockSize; i++ {
			w.writeBits(uint64(i), bps)
		}
		return
	case PredictorFixed:
		w.writeBits(uint64(8+spec.order), 6)
		w.writeBits(0, 1)
		for i := 0; i < spec.order; i++ {
			w.writeBits(0, bps)
		}
	case PredictorLPC:
		w.writeBits(uint64(31+spec.order), 6)
		w.writeBits(0, 1)
		for i := 0; i < spec.order; i++ {
			w.writeBits(0, bps)
		}
		w.writeBits(uint64(spec.precision-1), 4)
		w.writeBits(0, 5)
		for i := 0; i < spec.order; i++ {
			w.writeBits(0, uint(spec.precision))
		}
	}

	// Rice residual, parameter 3, quotient 0 for every sample.
	const param = 3
	w.writeBits(0, 2)
	w.writeBits(uint64(spec.partOrder), 4)
	partitions := 1 << spec.partOrder
	per := blockSize >> spec.partOrder
	for p := 0; p < partitions; p++ {
		count := per
		if p == 0 {
			count = per - spec.order
		}
		w.writeBits(param, 4)
		for i := 0; i < count; i++ {
			w.writeBits(1, 1) // unary quotient 0
			w.writeBits(0, param)
		}
	}
}

// buildStream concatenates the signature, metadata blocks and frames.
func buildStream(blocks [][]byte, frames [][]byte) []byte {
	out := []byte(flacSignature)
	for _, b := range blocks {
		out = append(out, b...)
	}
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// totalSamplesForRatio picks a StreamInfo sample count that makes the
// audio region land at the wanted compression ratio for a 16-bit mono
// stream.
func totalSamplesForRatio(audioBytes int, ratio float64) uint64 {
	return uint64(float64(audioBytes) / ratio / 2)
}
