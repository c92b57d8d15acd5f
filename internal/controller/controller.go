// Package controller selects an FEC scheme from a rolling window of
// transmission outcomes and gates the AI correction pass.
package controller

import (
	"fmt"
	"sync"

	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/gate"
	"github.com/danielpatrickdp/satlink/go-controller/internal/metrics"
)

// #region controller-struct

// Controller owns the ordered history of frame outcomes. It is created once
// per session and is safe for concurrent use: LogFrame appends under the
// write lock and every read works on a snapshot taken under the read lock.
type Controller struct {
	mu      sync.RWMutex
	config  Config
	gate    *gate.Gate
	history []Sample
}

// #endregion controller-struct

// #region constructor

// New creates a controller with empty history. A non-positive window falls
// back to the default of 10.
func New(config Config) *Controller {
	if config.WindowSize <= 0 {
		config.WindowSize = DefaultConfig().WindowSize
	}
	if config.MaxHistory < 0 {
		config.MaxHistory = 0
	}
	if config.Gate.BERThreshold == 0 {
		config.Gate = gate.DefaultGateConfig()
	}
	return &Controller{
		config: config,
		gate:   gate.NewGate(config.Gate),
	}
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	return c.config
}

// #endregion constructor

// #region log-frame

// LogFrame appends one frame outcome to the history.
func (c *Controller) LogFrame(snrDB, ber float64, eccUsed ecc.SchemeID, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, Sample{
		SNRdB:   snrDB,
		BER:     ber,
		ECCUsed: eccUsed,
		Success: success,
	})
	if limit := c.config.MaxHistory; limit > 0 && len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}
}

// #endregion log-frame

// #region snapshots

// History returns a copy of every retained sample in arrival order.
func (c *Controller) History() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Sample(nil), c.history...)
}

// Len returns the number of retained samples.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.history)
}

// Window returns a copy of the most recent WindowSize samples.
func (c *Controller) Window() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.windowLocked()
}

func (c *Controller) windowLocked() []Sample {
	start := max(0, len(c.history)-c.config.WindowSize)
	return append([]Sample(nil), c.history[start:]...)
}

// Stats returns the moving averages over the current window.
func (c *Controller) Stats() WindowStats {
	return computeStats(c.Window(), c.config.WindowSize)
}

func computeStats(window []Sample, size int) WindowStats {
	snrs := make([]float64, len(window))
	bers := make([]float64, len(window))
	successes := make([]float64, len(window))
	for i, s := range window {
		snrs[i] = s.SNRdB
		bers[i] = s.BER
		if s.Success {
			successes[i] = 1
		}
	}
	return WindowStats{
		Samples:     len(window),
		AvgSNR:      metrics.MovingAverage(snrs, size),
		AvgBER:      metrics.MovingAverage(bers, size),
		SuccessRate: metrics.MovingAverage(successes, size),
	}
}

// #endregion snapshots

// #region decide

// OptimalECC recommends a scheme for the caller's current SNR.
func (c *Controller) OptimalECC(currentSNR float64) ecc.SchemeID {
	return c.Decide(currentSNR).Scheme
}

// Decide evaluates the selection rules in order against one snapshot of the
// window; the first matching rule wins. The SNR bands of rules 3 to 5 leave
// only current SNR > 12 with window BER >= 0.01 for rules 6 and 7.
func (c *Controller) Decide(currentSNR float64) Decision {
	window := c.Window()
	d := Decision{CurrentSNR: currentSNR}

	// Rule 1: nothing observed yet, use the strongest code.
	if len(window) == 0 {
		d.Scheme = ecc.SchemeReedSolomon
		d.Rule = 1
		d.Reason = "empty history: conservative default"
		return d
	}

	// Rule 2: window statistics. AvgSNR is kept for observability only.
	d.Stats = computeStats(window, c.config.WindowSize)
	d.LastUsed = window[len(window)-1].ECCUsed

	switch {
	// Rule 3: clean channel and clean history.
	case currentSNR > highSNRdB && d.Stats.AvgBER < lowBER:
		d.Scheme = ecc.SchemeHamming
		d.Rule = 3
		d.Reason = fmt.Sprintf("snr %.2f dB > %.0f and avg ber %.4f < %.2f", currentSNR, highSNRdB, d.Stats.AvgBER, lowBER)
	// Rule 4: medium SNR, burst resilience.
	case currentSNR >= lowSNRdB && currentSNR <= highSNRdB:
		d.Scheme = ecc.SchemeReedSolomon
		d.Rule = 4
		d.Reason = fmt.Sprintf("snr %.2f dB within [%.0f, %.0f]", currentSNR, lowSNRdB, highSNRdB)
	// Rule 5: low SNR, strongest correction.
	case currentSNR < lowSNRdB:
		d.Scheme = ecc.SchemeReedSolomon
		d.Rule = 5
		d.Reason = fmt.Sprintf("snr %.2f dB < %.0f", currentSNR, lowSNRdB)
	// Rule 6: the scheme in use is failing, step up one level.
	case d.Stats.AvgBER > escalateBER:
		d.Scheme = d.LastUsed.Escalate()
		d.Rule = 6
		d.Reason = fmt.Sprintf("avg ber %.4f > %.2f: escalate %s -> %s", d.Stats.AvgBER, escalateBER, d.LastUsed, d.Scheme)
	// Rule 7: keep the last scheme when it is a known one.
	case d.LastUsed.Recognized():
		d.Scheme = d.LastUsed
		d.Rule = 7
		d.Reason = fmt.Sprintf("keep last scheme %s", d.LastUsed)
	default:
		d.Scheme = ecc.SchemeReedSolomon
		d.Rule = 7
		d.Reason = fmt.Sprintf("last scheme %q not recognized: default", d.LastUsed)
	}
	return d
}

// #endregion decide

// #region ai-gate

// ShouldUseAI reports whether the AI correction pass should run: when the FEC
// decoder failed or the pre-correction BER is above the gate threshold.
func (c *Controller) ShouldUseAI(berBefore float64, eccSuccess bool) bool {
	return c.gate.Evaluate(berBefore, eccSuccess).Invoke
}

// EvaluateAI returns the full gate decision for logging.
func (c *Controller) EvaluateAI(berBefore float64, eccSuccess bool) gate.GateDecision {
	return c.gate.Evaluate(berBefore, eccSuccess)
}

// #endregion ai-gate
