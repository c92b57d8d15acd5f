package gate

import "fmt"

// #region gate
// Gate decides whether a frame should go through the AI correction pass.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Config returns the active thresholds.
func (g *Gate) Config() GateConfig {
	return g.config
}

// Evaluate invokes the corrector when the FEC decoder failed or when the
// pre-correction BER is above the threshold. All triggers are collected for
// logging; any one of them is enough.
func (g *Gate) Evaluate(berBefore float64, eccSuccess bool) GateDecision {
	var triggers []TriggerSignal

	if !eccSuccess {
		triggers = append(triggers, TriggerSignal{
			Type:   TriggerECCFailure,
			Reason: "fec decoder reported failure",
		})
	}

	if berBefore > g.config.BERThreshold {
		triggers = append(triggers, TriggerSignal{
			Type:   TriggerHighBER,
			Reason: fmt.Sprintf("ber %.4f exceeds threshold %.4f", berBefore, g.config.BERThreshold),
		})
	}

	if len(triggers) == 0 {
		return GateDecision{
			Action: "skip",
			Reason: fmt.Sprintf("fec ok and ber %.4f within threshold", berBefore),
		}
	}

	return GateDecision{
		Action:   "invoke",
		Reason:   triggers[0].Reason,
		Invoke:   true,
		Triggers: triggers,
	}
}

// #endregion gate
