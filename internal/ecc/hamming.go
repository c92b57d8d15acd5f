package ecc

import "github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"

// #region hamming

const (
	hammingDataBits = 4
	hammingCodeBits = 7
)

// Hamming74 is a Hamming(7,4) block code. Each 4-bit nibble d0..d3 becomes
// [p1, p2, d0, p3, d1, d2, d3] with
//
//	p1 = d0^d1^d3, p2 = d0^d2^d3, p3 = d1^d2^d3.
//
// The decoder corrects one flipped bit per 7-bit block. Two or more flips in a
// block miscorrect silently and are still reported as success.
type Hamming74 struct{}

// Scheme implements Codec.
func (Hamming74) Scheme() SchemeID { return SchemeHamming }

// Encode zero-pads the payload bits to a multiple of 4, encodes each nibble
// and packs the codeword bits with a zero tail to a byte boundary.
func (Hamming74) Encode(payload []byte) []byte {
	data := bitbuf.FromBytes(payload).PadTo(hammingDataBits)
	out := make(bitbuf.Bits, 0, len(data)/hammingDataBits*hammingCodeBits)
	for i := 0; i < len(data); i += hammingDataBits {
		out = append(out, encodeNibble(data[i:i+hammingDataBits])...)
	}
	return out.Bytes()
}

// Decode truncates the codeword bits to a multiple of 7, corrects each block
// by syndrome and packs the recovered data bits. The result can carry a
// zero-padded trailing byte. Success is false only when no complete block is
// present, so an empty payload round-trips as an empty result with ok=false
// even though no corruption occurred.
func (Hamming74) Decode(codeword []byte) ([]byte, bool) {
	bits := bitbuf.FromBytes(codeword).TruncateTo(hammingCodeBits)
	if len(bits) == 0 {
		return []byte{}, false
	}
	data := make(bitbuf.Bits, 0, len(bits)/hammingCodeBits*hammingDataBits)
	for i := 0; i < len(bits); i += hammingCodeBits {
		cw := bits[i : i+hammingCodeBits]
		if s := Syndrome(cw); s != 0 {
			cw[s-1] ^= 1
		}
		data = append(data, cw[2], cw[4], cw[5], cw[6])
	}
	return data.Bytes(), true
}

// Syndrome returns the parity-check result for a 7-bit block, where
//
//	s1 = c0^c2^c4^c6, s2 = c1^c2^c5^c6, s3 = c3^c4^c5^c6.
//
// s1 checks the positions with bit 0 set in their 1-based index, s3 those with
// bit 2 set, so s3*4 + s2*2 + s1 is the 1-based position of a single flipped
// bit, and 0 means the block is consistent. The s1*4 + s2*2 + s3 weighting
// written in some descriptions of this layout would flip the wrong bit (a flip
// of c0 would land on c3), so it is deliberately not used.
func Syndrome(cw bitbuf.Bits) int {
	s1 := cw[0] ^ cw[2] ^ cw[4] ^ cw[6]
	s2 := cw[1] ^ cw[2] ^ cw[5] ^ cw[6]
	s3 := cw[3] ^ cw[4] ^ cw[5] ^ cw[6]
	return int(s3)<<2 | int(s2)<<1 | int(s1)
}

func encodeNibble(d bitbuf.Bits) bitbuf.Bits {
	p1 := d[0] ^ d[1] ^ d[3]
	p2 := d[0] ^ d[2] ^ d[3]
	p3 := d[1] ^ d[2] ^ d[3]
	return bitbuf.Bits{p1, p2, d[0], p3, d[1], d[2], d[3]}
}

// #endregion hamming
