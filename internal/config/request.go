// Package config holds the per-transmission request and the service settings.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
)

// #region request

const (
	DefaultPayloadSize = 223
	DefaultScheme      = ecc.SchemeReedSolomon
	DefaultSNRdB       = 10.0
	DefaultNoise       = channel.NoiseAWGN
)

// Request is one transmission request as received from a caller.
type Request struct {
	PayloadSize int     `json:"payload_size"`
	ECCScheme   string  `json:"ecc_scheme"`
	AutoECC     bool    `json:"auto_ecc"`
	SNRdB       float64 `json:"snr_db"`
	NoiseType   string  `json:"noise_type"`
}

// DefaultRequest returns a request with every field at its default.
func DefaultRequest() Request {
	return Request{
		PayloadSize: DefaultPayloadSize,
		ECCScheme:   string(DefaultScheme),
		SNRdB:       DefaultSNRdB,
		NoiseType:   string(DefaultNoise),
	}
}

// ParseRequest decodes a JSON object on top of DefaultRequest, so absent
// fields keep their defaults. Unknown fields are rejected.
func ParseRequest(data []byte) (Request, error) {
	req := DefaultRequest()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// #endregion request

// #region normalize

// Resolved is a request after validation. Every field holds a usable value.
type Resolved struct {
	PayloadSize int
	Scheme      ecc.SchemeID
	AutoECC     bool
	SNRdB       float64
	Noise       channel.NoiseType
	// Warnings lists each fallback that was applied.
	Warnings []string
}

// Normalize applies the fallbacks: a non-positive payload size becomes 223,
// an unknown scheme becomes none, an unknown noise type becomes awgn and a
// non-finite SNR becomes 10 dB.
func (r Request) Normalize() Resolved {
	out := Resolved{
		PayloadSize: r.PayloadSize,
		AutoECC:     r.AutoECC,
		SNRdB:       r.SNRdB,
	}

	if out.PayloadSize <= 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("payload_size %d: using %d", r.PayloadSize, DefaultPayloadSize))
		out.PayloadSize = DefaultPayloadSize
	}

	scheme, ok := ecc.ParseScheme(r.ECCScheme)
	if !ok {
		out.Warnings = append(out.Warnings, fmt.Sprintf("ecc_scheme %q: using %s", r.ECCScheme, scheme))
	}
	out.Scheme = scheme

	noise, ok := channel.ParseNoise(r.NoiseType)
	if !ok {
		out.Warnings = append(out.Warnings, fmt.Sprintf("noise_type %q: using %s", r.NoiseType, noise))
	}
	out.Noise = noise

	if math.IsNaN(r.SNRdB) || math.IsInf(r.SNRdB, 0) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("snr_db %v: using %.1f", r.SNRdB, DefaultSNRdB))
		out.SNRdB = DefaultSNRdB
	}
	return out
}

// #endregion normalize
