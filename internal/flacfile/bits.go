package flacfile

import "io"

const bitWindowSize = 32 << 10

// bitCursor reads big-endian bit fields from an io.ReaderAt while keeping
// an explicit absolute bit position. Resynchronization snapshots the
// position with pos/seekBit rather than relying on hidden stream state.
type bitCursor struct {
	src  io.ReaderAt
	size int64

	bit int64 // absolute position in bits

	win    []byte
	winOff int64 // absolute byte offset of win[0]
	winLen int
}

func newBitCursor(src io.ReaderAt, size, byteOff int64) *bitCursor {
	return &bitCursor{
		src:  src,
		size: size,
		bit:  byteOff * 8,
		win:  make([]byte, bitWindowSize),
	}
}

// pos returns the absolute bit position.
func (c *bitCursor) pos() int64 { return c.bit }

// seekBit repositions the cursor to an absolute bit position. The cached
// window stays valid; byteAt re-fills it on demand.
func (c *bitCursor) seekBit(bit int64) { c.bit = bit }

// byteOffset returns the byte offset of the current position. The cursor
// must be byte aligned.
func (c *bitCursor) byteOffset() int64 { return c.bit >> 3 }

func (c *bitCursor) aligned() bool { return c.bit&7 == 0 }

// alignByte advances to the next byte boundary.
func (c *bitCursor) alignByte() {
	c.bit = (c.bit + 7) &^ 7
}

func (c *bitCursor) byteAt(off int64) (byte, error) {
	if off >= c.size {
		return 0, truncatedf("read past end at byte %d", off)
	}
	if off < c.winOff || off >= c.winOff+int64(c.winLen) {
		n, err := c.src.ReadAt(c.win, off)
		if err != nil && err != io.EOF {
			return 0, err
		}
		if n == 0 {
			return 0, truncatedf("read past end at byte %d", off)
		}
		c.winOff = off
		c.winLen = n
	}
	return c.win[off-c.winOff], nil
}

// readBits reads up to 57 bits MSB first.
func (c *bitCursor) readBits(n uint) (uint64, error) {
	var v uint64
	for n > 0 {
		b, err := c.byteAt(c.bit >> 3)
		if err != nil {
			return 0, err
		}
		avail := uint(8 - c.bit&7)
		take := avail
		if n < take {
			take = n
		}
		shift := avail - take
		v = v<<take | uint64(b>>shift)&(1<<take-1)
		c.bit += int64(take)
		n -= take
	}
	return v, nil
}

// readUnary counts zero bits up to the terminating one bit.
func (c *bitCursor) readUnary() (int, error) {
	n := 0
	for {
		b, err := c.byteAt(c.bit >> 3)
		if err != nil {
			return 0, err
		}
		rem := uint(8 - c.bit&7)
		chunk := b & (1<<rem - 1)
		if chunk == 0 {
			n += int(rem)
			c.bit += int64(rem)
			continue
		}
		lead := rem - 1 - highBit(chunk)
		n += int(lead)
		c.bit += int64(lead) + 1
		return n, nil
	}
}

// skipBits advances without reading. The skipped region must still lie
// inside the input; the final position may sit exactly at end of input.
func (c *bitCursor) skipBits(n int64) error {
	next := c.bit + n
	if next > c.size*8 {
		return truncatedf("skip of %d bits passes end of input", n)
	}
	c.bit = next
	return nil
}

// highBit returns the index of the highest set bit of a non-zero byte.
func highBit(b byte) uint {
	i := uint(0)
	for b > 1 {
		b >>= 1
		i++
	}
	return i
}
