package flacfile

// CRC-8 with polynomial x^8 + x^2 + x + 1 (0x07), as used by FLAC frame
// headers. Initial value 0, no reflection, no final xor.

var crc8Table = makeCRC8Table()

func makeCRC8Table() [256]byte {
	var table [256]byte
	for i := range table {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}
