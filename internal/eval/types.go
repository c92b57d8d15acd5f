package eval

// #region eval-config
// EvalConfig holds thresholds for post-transmission link checks.
type EvalConfig struct {
	MaxResidualBER     float64 // fail if payload BER after decoding exceeds this
	ChannelBERBaseline float64 // warn if raw channel BER rises above this
}

// DefaultEvalConfig returns the default link thresholds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxResidualBER:     0.01,
		ChannelBERBaseline: 0.05,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the outcome of checking one transmission.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
