package gate

// #region trigger-type
// TriggerType enumerates the conditions that send a frame to the AI corrector.
type TriggerType string

const (
	TriggerECCFailure TriggerType = "ecc_failure"
	TriggerHighBER    TriggerType = "high_ber"
)

// #endregion trigger-type

// #region trigger-signal
// TriggerSignal represents one detected trigger condition.
type TriggerSignal struct {
	Type   TriggerType
	Reason string
}

// #endregion trigger-signal

// #region gate-config
// GateConfig holds the thresholds for the AI-invocation decision.
type GateConfig struct {
	BERThreshold float64 // invoke when the pre-correction BER is strictly above this
}

// DefaultGateConfig returns the fixed 0.1 BER threshold.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		BERThreshold: 0.1,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action   string // "invoke" | "skip"
	Reason   string
	Invoke   bool
	Triggers []TriggerSignal // non-empty if Invoke
}

// #endregion gate-decision
