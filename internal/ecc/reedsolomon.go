package ecc

import (
	"fmt"

	"github.com/vivint/infectious"
)

// #region constants

const (
	RSBlockSize  = 255 // n: symbols per codeword block
	RSDataSize   = 223 // k: payload symbols per block
	RSParitySize = RSBlockSize - RSDataSize

	// RSMaxErrors is the number of byte errors one block can correct.
	RSMaxErrors = RSParitySize / 2
)

// #endregion constants

// #region reed-solomon

// ReedSolomon is a systematic RS(255,223) code over GF(256). Each block
// carries up to 223 payload bytes followed by 32 parity bytes and corrects up
// to 16 byte errors. A payload longer than 223 bytes is split into blocks; a
// short final block is sent shortened (its leading zero symbols are implied,
// not transmitted).
type ReedSolomon struct {
	fec *infectious.FEC
}

var defaultRS = mustReedSolomon()

// NewReedSolomon builds the RS(255,223) generator. The FEC tables are
// read-only after construction, so one instance serves concurrent callers.
func NewReedSolomon() (*ReedSolomon, error) {
	f, err := infectious.NewFEC(RSDataSize, RSBlockSize)
	if err != nil {
		return nil, fmt.Errorf("new rs(%d,%d): %w", RSBlockSize, RSDataSize, err)
	}
	return &ReedSolomon{fec: f}, nil
}

func mustReedSolomon() *ReedSolomon {
	rs, err := NewReedSolomon()
	if err != nil {
		panic(err)
	}
	return rs
}

// Scheme implements Codec.
func (r *ReedSolomon) Scheme() SchemeID { return SchemeReedSolomon }

// Encode appends 32 parity bytes to every 223-byte payload block.
func (r *ReedSolomon) Encode(payload []byte) []byte {
	blocks := (len(payload) + RSDataSize - 1) / RSDataSize
	out := make([]byte, 0, len(payload)+blocks*RSParitySize)
	for start := 0; start < len(payload); start += RSDataSize {
		end := min(start+RSDataSize, len(payload))
		out = append(out, r.encodeBlock(payload[start:end])...)
	}
	return out
}

// Decode corrects every block of the codeword. If any block holds an
// uncorrectable error pattern the whole decode fails with an empty payload.
func (r *ReedSolomon) Decode(codeword []byte) ([]byte, bool) {
	out := make([]byte, 0, len(codeword))
	for start := 0; start < len(codeword); start += RSBlockSize {
		end := min(start+RSBlockSize, len(codeword))
		data, ok := r.decodeBlock(codeword[start:end])
		if !ok {
			return []byte{}, false
		}
		out = append(out, data...)
	}
	return out, true
}

// #endregion reed-solomon

// #region blocks

func (r *ReedSolomon) encodeBlock(data []byte) []byte {
	pad := RSDataSize - len(data)
	msg := make([]byte, RSDataSize)
	copy(msg[pad:], data)

	out := make([]byte, len(data)+RSParitySize)
	copy(out, data)
	parity := out[len(data):]
	// Data slices handed to the callback are only valid during the call.
	err := r.fec.Encode(msg, func(s infectious.Share) {
		if s.Number >= RSDataSize {
			parity[s.Number-RSDataSize] = s.Data[0]
		}
	})
	if err != nil {
		// msg is always exactly k bytes, so Encode cannot reject it.
		panic(fmt.Sprintf("rs encode: %v", err))
	}
	return out
}

func (r *ReedSolomon) decodeBlock(block []byte) ([]byte, bool) {
	if len(block) <= RSParitySize {
		return nil, false
	}
	dataLen := len(block) - RSParitySize
	pad := RSDataSize - dataLen

	shares := make([]infectious.Share, RSBlockSize)
	for i := range shares {
		var sym byte
		switch {
		case i < pad:
			sym = 0
		case i < RSDataSize:
			sym = block[i-pad]
		default:
			sym = block[dataLen+i-RSDataSize]
		}
		shares[i] = infectious.Share{Number: i, Data: []byte{sym}}
	}

	msg, err := r.fec.Decode(nil, shares)
	if err != nil || len(msg) != RSDataSize {
		return nil, false
	}
	// The implied leading zeros must survive correction, otherwise the decoder
	// converged on a different codeword.
	for _, b := range msg[:pad] {
		if b != 0 {
			return nil, false
		}
	}
	return append([]byte(nil), msg[pad:]...), true
}

// #endregion blocks
