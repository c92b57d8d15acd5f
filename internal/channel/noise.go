// Package channel synthesizes channel impairments over bit vectors.
//
// The models are simplified baseband approximations: bits are treated as
// 0/1 amplitudes, noise is added and the result is sliced at 0.5. Every
// function takes its random generator as a parameter and keeps no state.
package channel

import (
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"
)

// #region noise-type

// NoiseType selects the impairment model.
type NoiseType string

const (
	NoiseAWGN   NoiseType = "awgn"
	NoiseBurst  NoiseType = "burst"
	NoiseFading NoiseType = "fading"
)

// ParseNoise maps a request string to a NoiseType. Unknown values fall back to
// AWGN with ok=false.
func ParseNoise(s string) (NoiseType, bool) {
	switch NoiseType(strings.ToLower(strings.TrimSpace(s))) {
	case NoiseAWGN:
		return NoiseAWGN, true
	case NoiseBurst:
		return NoiseBurst, true
	case NoiseFading:
		return NoiseFading, true
	}
	return NoiseAWGN, false
}

// #endregion noise-type

// #region slicer

// sliceLevel is the decision threshold between a 0 and a 1.
const sliceLevel = 0.5

// #endregion slicer

// #region awgn

// AWGN adds white Gaussian noise at snrDB and slices the result back to bits.
// The noise deviation is sqrt(P/snr) where P is the mean squared bit value.
func AWGN(rng *rand.Rand, bits bitbuf.Bits, snrDB float64) bitbuf.Bits {
	return addNoise(rng, bits.Floats(), snrDB)
}

func addNoise(rng *rand.Rand, signal []float64, snrDB float64) bitbuf.Bits {
	if len(signal) == 0 {
		return bitbuf.Bits{}
	}
	snrLinear := math.Pow(10, snrDB/10)

	squared := make([]float64, len(signal))
	for i, v := range signal {
		squared[i] = v * v
	}
	power := stat.Mean(squared, nil)

	noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(power / snrLinear), Src: rng}
	received := make([]float64, len(signal))
	for i, v := range signal {
		received[i] = v + noise.Rand()
	}
	return bitbuf.Threshold(received, sliceLevel)
}

// #endregion awgn

// #region burst

// BurstConfig parameterizes the burst injector.
type BurstConfig struct {
	Prob   float64 // chance of one burst per call
	MaxLen int     // longest burst in bits, at least 2
}

// DefaultBurstConfig returns a 3% burst chance with bursts of up to 6 bits.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{Prob: 0.03, MaxLen: 6}
}

// BurstRegion draws the burst for one call over n bits. ok is false when no
// burst occurs. The region is clipped to the buffer end.
func BurstRegion(rng *rand.Rand, n int, cfg BurstConfig) (start, length int, ok bool) {
	if n == 0 || rng.Float64() >= cfg.Prob {
		return 0, 0, false
	}
	maxLen := max(cfg.MaxLen, 2)
	start = rng.IntN(max(1, n-maxLen))
	length = 2 + rng.IntN(maxLen-1)
	if start+length > n {
		length = n - start
	}
	return start, length, true
}

// Burst inverts at most one contiguous region of the vector.
func Burst(rng *rand.Rand, bits bitbuf.Bits, cfg BurstConfig) bitbuf.Bits {
	out := bits.Clone()
	start, length, ok := BurstRegion(rng, len(out), cfg)
	if !ok {
		return out
	}
	for i := start; i < start+length; i++ {
		out[i] ^= 1
	}
	return out
}

// #endregion burst

// #region fading

// RayleighFading scales each bit by an independent Rayleigh envelope, the
// magnitude of a unit complex Gaussian, then applies AWGN at snrDB.
func RayleighFading(rng *rand.Rand, bits bitbuf.Bits, snrDB float64) bitbuf.Bits {
	gauss := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	faded := make([]float64, len(bits))
	for i, b := range bits {
		envelope := math.Hypot(gauss.Rand(), gauss.Rand())
		faded[i] = float64(b) * envelope
	}
	return addNoise(rng, faded, snrDB)
}

// #endregion fading

// #region impair

// Impair applies the selected model. Burst noise rides on top of AWGN; an
// unknown type degrades to plain AWGN.
func Impair(rng *rand.Rand, noise NoiseType, bits bitbuf.Bits, snrDB float64, burst BurstConfig) bitbuf.Bits {
	switch noise {
	case NoiseFading:
		return RayleighFading(rng, bits, snrDB)
	case NoiseBurst:
		return Burst(rng, AWGN(rng, bits, snrDB), burst)
	}
	return AWGN(rng, bits, snrDB)
}

// #endregion impair
