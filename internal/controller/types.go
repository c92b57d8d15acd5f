package controller

import (
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/gate"
)

// #region sample
// Sample is one transmitted frame's channel-quality outcome. Samples are
// immutable once logged.
type Sample struct {
	SNRdB   float64      `json:"snr_db"`
	BER     float64      `json:"ber"`
	ECCUsed ecc.SchemeID `json:"ecc_used"`
	Success bool         `json:"success"`
}

// #endregion sample

// #region config
// Config holds the controller's window and thresholds.
type Config struct {
	WindowSize int // samples considered by the decision rules
	MaxHistory int // 0 keeps every sample; otherwise the oldest are dropped
	Gate       gate.GateConfig
}

// DefaultConfig returns a 10-sample window with unbounded history.
func DefaultConfig() Config {
	return Config{
		WindowSize: 10,
		MaxHistory: 0,
		Gate:       gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region thresholds
const (
	highSNRdB   = 12.0 // above: channel clean enough for Hamming
	lowSNRdB    = 6.0  // below: strongest correction
	lowBER      = 0.01 // window BER under which Hamming suffices
	escalateBER = 0.1  // window BER above which the last scheme is escalated
)

// #endregion thresholds

// #region window-stats
// WindowStats are the moving averages over the decision window.
type WindowStats struct {
	Samples     int     `json:"samples"`
	AvgSNR      float64 `json:"avg_snr"`
	AvgBER      float64 `json:"avg_ber"`
	SuccessRate float64 `json:"success_rate"`
}

// #endregion window-stats

// #region decision
// Decision is the scheme recommendation plus the rule that produced it.
type Decision struct {
	Scheme     ecc.SchemeID `json:"scheme"`
	Rule       int          `json:"rule"` // 1 empty history, 3 high SNR, 4 medium SNR, 5 low SNR, 6 escalation, 7 fallback
	Reason     string       `json:"reason"`
	CurrentSNR float64      `json:"current_snr"`
	LastUsed   ecc.SchemeID `json:"last_used,omitempty"`
	Stats      WindowStats  `json:"stats"`
}

// #endregion decision
