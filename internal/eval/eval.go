// Package eval scores a finished transmission against link-quality thresholds.
package eval

import (
	"fmt"

	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region eval-harness
// EvalHarness runs the post-transmission checks.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Config returns the active thresholds.
func (h *EvalHarness) Config() EvalConfig {
	return h.config
}

// Run checks one telemetry record. Residual BER and silent miscorrection are
// blocking; channel BER and AI gain are informational.
func (h *EvalHarness) Run(rec telemetry.Record) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Residual BER after the decoder.
	residualPass := rec.BERBefore <= h.config.MaxResidualBER
	metrics = append(metrics, EvalMetric{
		Name:  "residual_ber",
		Value: rec.BERBefore,
		Pass:  residualPass,
	})
	if !residualPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("residual ber %.4f exceeds %.4f", rec.BERBefore, h.config.MaxResidualBER))
	}

	// 2. Decoder claimed success but bits are still wrong.
	silent := rec.ECCSuccess && rec.BERBefore > 0
	metrics = append(metrics, EvalMetric{
		Name:  "silent_miscorrection",
		Value: boolValue(silent),
		Pass:  !silent,
	})
	if silent {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%s reported success with ber %.4f", rec.ECCScheme, rec.BERBefore))
	}

	// 3. Raw channel quality, informational.
	metrics = append(metrics, EvalMetric{
		Name:  "channel_ber",
		Value: rec.ChannelBER,
		Pass:  rec.ChannelBER <= h.config.ChannelBERBaseline,
	})

	// 4. AI gain, informational and only when the model ran.
	if rec.AICorrected {
		gain := rec.BERBefore - rec.BERAfter
		metrics = append(metrics, EvalMetric{
			Name:  "ai_gain",
			Value: gain,
			Pass:  gain >= 0,
		})
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
