package ecc

import (
	"encoding/binary"
	"hash/crc32"
)

// #region crc32

// CRCSize is the length of the appended checksum.
const CRCSize = 4

// CRC32 appends a big-endian IEEE 802.3 CRC-32 (reflected, init and xorout
// 0xFFFFFFFF). It detects corruption but cannot correct it.
type CRC32 struct{}

// Scheme implements Codec.
func (CRC32) Scheme() SchemeID { return SchemeCRC }

// Encode returns payload || crc32(payload).
func (CRC32) Encode(payload []byte) []byte {
	out := make([]byte, len(payload)+CRCSize)
	copy(out, payload)
	binary.BigEndian.PutUint32(out[len(payload):], crc32.ChecksumIEEE(payload))
	return out
}

// Decode strips the trailing checksum and verifies it. A mismatch still
// returns the stripped payload. Inputs shorter than the checksum fail with an
// empty payload.
func (CRC32) Decode(codeword []byte) ([]byte, bool) {
	if len(codeword) < CRCSize {
		return []byte{}, false
	}
	n := len(codeword) - CRCSize
	payload := append([]byte(nil), codeword[:n]...)
	want := binary.BigEndian.Uint32(codeword[n:])
	return payload, crc32.ChecksumIEEE(payload) == want
}

// #endregion crc32
