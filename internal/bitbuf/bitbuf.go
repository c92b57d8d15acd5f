// Package bitbuf converts between byte buffers and bit vectors.
//
// Bits are unpacked MSB first, so byte 0xA0 becomes 1,0,1,0,0,0,0,0. Packing
// zero-pads the tail up to the next byte boundary.
package bitbuf

// #region types

// Bits is an ordered vector of single-bit values, each element 0 or 1.
type Bits []uint8

// #endregion types

// #region conversion

// FromBytes unpacks data into len(data)*8 bits.
func FromBytes(data []byte) Bits {
	out := make(Bits, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			out[i*8+j] = (b >> (7 - j)) & 1
		}
	}
	return out
}

// Bytes packs the vector into ceil(len/8) bytes. Any non-zero element counts as 1.
func (b Bits) Bytes() []byte {
	out := make([]byte, (len(b)+7)/8)
	for i, v := range b {
		if v != 0 {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}

// Floats returns the vector as float64 samples for the channel models.
func (b Bits) Floats() []float64 {
	out := make([]float64, len(b))
	for i, v := range b {
		out[i] = float64(v)
	}
	return out
}

// Threshold maps samples strictly above cut to 1 and everything else to 0.
func Threshold(samples []float64, cut float64) Bits {
	out := make(Bits, len(samples))
	for i, s := range samples {
		if s > cut {
			out[i] = 1
		}
	}
	return out
}

// #endregion conversion

// #region padding

// PadTo zero-pads the vector so its length is a multiple of n.
// The receiver is never modified.
func (b Bits) PadTo(n int) Bits {
	if n <= 0 {
		return b.Clone()
	}
	size := len(b)
	if rem := size % n; rem != 0 {
		size += n - rem
	}
	out := make(Bits, size)
	copy(out, b)
	return out
}

// TruncateTo drops trailing bits so the length is a multiple of n.
func (b Bits) TruncateTo(n int) Bits {
	if n <= 0 {
		return b.Clone()
	}
	return b[:len(b)-len(b)%n].Clone()
}

// Fit returns exactly n bits: truncated when longer, zero-padded when shorter.
func (b Bits) Fit(n int) Bits {
	if n < 0 {
		n = 0
	}
	out := make(Bits, n)
	copy(out, b)
	return out
}

// Clone returns an independent copy.
func (b Bits) Clone() Bits {
	out := make(Bits, len(b))
	copy(out, b)
	return out
}

// #endregion padding
