package telemetry

import (
	"time"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
)

// #region record

// Record is one row of telemetry_logs: the outcome of a single transmission.
type Record struct {
	ID          string            `json:"id"`
	RunID       string            `json:"run_id"`
	SNRdB       float64           `json:"snr_db"`
	NoiseType   channel.NoiseType `json:"noise_type"`
	ECCScheme   ecc.SchemeID      `json:"ecc_scheme"`
	ECCSuccess  bool              `json:"ecc_success"`
	ChannelBER  float64           `json:"channel_ber"`
	BERBefore   float64           `json:"ber_before"`
	BERAfter    float64           `json:"ber_after"`
	AICorrected bool              `json:"ai_corrected"`
	LatencyMS   float64           `json:"latency_ms"`
	Timestamp   time.Time         `json:"timestamp"`
}

// #endregion record

// #region query

// Filter narrows List. Zero fields match everything; Limit <= 0 means 100.
type Filter struct {
	RunID  string
	Scheme ecc.SchemeID
	Limit  int
}

// SchemeSummary aggregates the records of one scheme.
type SchemeSummary struct {
	Scheme        ecc.SchemeID `json:"scheme"`
	Frames        int          `json:"frames"`
	SuccessRate   float64      `json:"success_rate"`
	AvgSNR        float64      `json:"avg_snr_db"`
	AvgBERBefore  float64      `json:"avg_ber_before"`
	AvgBERAfter   float64      `json:"avg_ber_after"`
	AICorrections int          `json:"ai_corrections"`
	AvgLatencyMS  float64      `json:"avg_latency_ms"`
}

// #endregion query
