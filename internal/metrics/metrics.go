// Package metrics computes link-quality figures over bit vectors and series.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"
)

// #region ber

// CalculateBER returns the fraction of mismatched positions. When lengths
// differ only the overlapping prefix is compared. No overlap yields 0.
func CalculateBER(original, received bitbuf.Bits) float64 {
	n := min(len(original), len(received))
	if n == 0 {
		return 0
	}
	errs := 0
	for i := 0; i < n; i++ {
		if original[i] != received[i] {
			errs++
		}
	}
	return float64(errs) / float64(n)
}

// FrameSuccess reports whether every overlapping position matches.
func FrameSuccess(original, received bitbuf.Bits) bool {
	n := min(len(original), len(received))
	for i := 0; i < n; i++ {
		if original[i] != received[i] {
			return false
		}
	}
	return true
}

// #endregion ber

// #region moving-average

// MovingAverage is the mean of the last min(len(series), window) values.
// An empty series yields 0. A window below 1 is treated as 1.
func MovingAverage(series []float64, window int) float64 {
	if len(series) == 0 {
		return 0
	}
	window = max(window, 1)
	return stat.Mean(series[len(series)-min(len(series), window):], nil)
}

// #endregion moving-average
