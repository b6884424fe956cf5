package field

// Data conversion utilities between bytes and GF(2) vectors

// PackBits converts v back to bytes, most significant bit first.
// If len(v) is not divisible by 8, the last byte is padded with zeros.
func PackBits(v Vector) []byte {
	out := make([]byte, (len(v)+7)/8) // Round up to nearest byte
	for i, x := range v {
		if x != 0 {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}
