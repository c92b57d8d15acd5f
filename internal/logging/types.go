package logging

import "time"

// #region decision-entry

// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	RunID     string
	SNRdB     float64
	Scheme    string
	Rule      int
	Reason    string
	StatsJSON string
	CreatedAt time.Time
}

// #endregion decision-entry

// #region decision-record

// DecisionRecord is the JSON snapshot stored in decision_log.stats_json. It
// carries everything needed to explain the choice after the fact.
type DecisionRecord struct {
	Samples     int     `json:"samples"`
	AvgSNR      float64 `json:"avg_snr_db"`
	AvgBER      float64 `json:"avg_ber"`
	SuccessRate float64 `json:"success_rate"`
	LastUsed    string  `json:"last_used,omitempty"`
	WindowSize  int     `json:"window_size"`
}

// #endregion decision-record
