// Package ecc implements the forward-error-correction codecs: CRC-32
// (detection only), Hamming(7,4) and Reed-Solomon(255,223).
//
// Encoders never fail. Decoders return the recovered payload together with a
// success flag instead of an error, so callers can branch on partial recovery.
package ecc

// #region codec

// Codec encodes a payload into a codeword and decodes it back.
type Codec interface {
	Scheme() SchemeID
	Encode(payload []byte) []byte
	Decode(codeword []byte) ([]byte, bool)
}

// ForScheme returns the codec for id. Unknown ids get the passthrough codec.
func ForScheme(id SchemeID) Codec {
	switch id {
	case SchemeCRC:
		return CRC32{}
	case SchemeHamming:
		return Hamming74{}
	case SchemeReedSolomon:
		return defaultRS
	}
	return Passthrough{}
}

// #endregion codec

// #region passthrough

// Passthrough carries the payload unmodified and always reports success.
type Passthrough struct{}

// Scheme implements Codec.
func (Passthrough) Scheme() SchemeID { return SchemeNone }

// Encode implements Codec.
func (Passthrough) Encode(payload []byte) []byte {
	return append([]byte(nil), payload...)
}

// Decode implements Codec.
func (Passthrough) Decode(codeword []byte) ([]byte, bool) {
	return append([]byte(nil), codeword...), true
}

// #endregion passthrough
