package transmit

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/denoiser"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/eval"
	"github.com/danielpatrickdp/satlink/go-controller/internal/logging"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region collaborators

// Sink receives one telemetry record per transmission.
type Sink interface {
	Record(ctx context.Context, rec telemetry.Record) error
}

// DecisionLog receives one entry per automatic scheme decision.
type DecisionLog interface {
	LogDecision(entry logging.DecisionEntry) error
}

// #endregion collaborators

// #region options

// Options wires a Pipeline. Every field is optional.
type Options struct {
	// Controller is shared across pipelines of one session. Nil creates a
	// private controller with the default configuration.
	Controller *controller.Controller
	// Corrector runs the AI pass. Nil disables it.
	Corrector denoiser.Corrector
	Sink      Sink
	Decisions DecisionLog
	Eval      *eval.EvalHarness
	Metrics   *Metrics
	// Rand drives payload generation and channel noise. Nil seeds from the clock.
	Rand  *rand.Rand
	Clock func() time.Time
	Burst channel.BurstConfig
	// RunID tags every telemetry row. Empty generates a UUID.
	RunID string
}

// #endregion options

// #region result

// Result is the outcome of one transmission.
type Result struct {
	Success      bool                 `json:"success"`
	RunID        string               `json:"run_id"`
	ECCUsed      ecc.SchemeID         `json:"ecc_used"`
	NoiseType    channel.NoiseType    `json:"noise_type"`
	SNRdB        float64              `json:"snr_db"`
	PayloadBytes int                  `json:"payload_bytes"`
	CodewordLen  int                  `json:"codeword_bytes"`
	ECCSuccess   bool                 `json:"ecc_success"`
	ChannelBER   float64              `json:"channel_ber"`
	BERBefore    float64              `json:"ber_before"`
	BERAfter     float64              `json:"ber_after"`
	AIInvoked    bool                 `json:"ai_invoked"`
	AICorrected  bool                 `json:"ai_corrected"`
	LatencyMS    float64              `json:"latency_ms"`
	Decision     *controller.Decision `json:"decision,omitempty"`
	Eval         eval.EvalResult      `json:"eval"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// #endregion result
