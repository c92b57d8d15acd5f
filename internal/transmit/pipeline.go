// Package transmit runs one frame end to end: payload generation, FEC
// encoding, channel impairment, decoding, the optional AI pass, telemetry and
// the controller update.
package transmit

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"
	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/config"
	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/denoiser"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/eval"
	"github.com/danielpatrickdp/satlink/go-controller/internal/logging"
	"github.com/danielpatrickdp/satlink/go-controller/internal/metrics"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region pipeline-struct

// Pipeline owns the per-session collaborators. Transmit may be called from
// several goroutines; the rng is guarded by mu and the controller serializes
// itself.
type Pipeline struct {
	ctrl      *controller.Controller
	corrector denoiser.Corrector
	sink      Sink
	decisions DecisionLog
	harness   *eval.EvalHarness
	metrics   *Metrics
	burst     channel.BurstConfig
	clock     func() time.Time
	runID     string

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a pipeline, filling defaults for every nil option.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		ctrl:      opts.Controller,
		corrector: opts.Corrector,
		sink:      opts.Sink,
		decisions: opts.Decisions,
		harness:   opts.Eval,
		metrics:   opts.Metrics,
		burst:     opts.Burst,
		clock:     opts.Clock,
		runID:     opts.RunID,
		rng:       opts.Rand,
	}
	if p.ctrl == nil {
		p.ctrl = controller.New(controller.DefaultConfig())
	}
	if p.harness == nil {
		p.harness = eval.NewEvalHarness(eval.DefaultEvalConfig())
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(prometheus.NewRegistry())
	}
	if p.burst == (channel.BurstConfig{}) {
		p.burst = channel.DefaultBurstConfig()
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.runID == "" {
		p.runID = uuid.New().String()
	}
	if p.rng == nil {
		seed := uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return p
}

// Controller returns the controller this pipeline updates.
func (p *Pipeline) Controller() *controller.Controller {
	return p.ctrl
}

// RunID returns the tag written on every telemetry row.
func (p *Pipeline) RunID() string {
	return p.runID
}

// #endregion pipeline-struct

// #region transmit

// Transmit sends one frame. Domain failures (an uncorrectable frame, a failed
// AI call, a telemetry write error) are reported in the Result or logged; the
// only error is a context that is already done.
func (p *Pipeline) Transmit(ctx context.Context, req config.Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("transmit: %w", err)
	}
	start := p.clock()

	// 1. Validate.
	cfg := req.Normalize()
	for _, w := range cfg.Warnings {
		log.Printf("[TX] request fallback: %s", w)
	}

	res := Result{
		Success:      true,
		RunID:        p.runID,
		NoiseType:    cfg.Noise,
		SNRdB:        cfg.SNRdB,
		PayloadBytes: cfg.PayloadSize,
		Warnings:     cfg.Warnings,
	}

	// 2. Scheme: caller's choice or the controller's.
	scheme := cfg.Scheme
	if cfg.AutoECC {
		d := p.ctrl.Decide(cfg.SNRdB)
		scheme = d.Scheme
		res.Decision = &d
		log.Printf("[CTRL] auto ecc: snr=%.2f rule=%d -> %s (%s)", cfg.SNRdB, d.Rule, d.Scheme, d.Reason)
		p.logDecision(d)
	}
	res.ECCUsed = scheme
	codec := ecc.ForScheme(scheme)

	// 3. Payload, encode and the channel.
	payload, codeword, noisyBits := p.send(codec, cfg)
	payloadBits := bitbuf.FromBytes(payload)
	codewordBits := bitbuf.FromBytes(codeword)
	res.CodewordLen = len(codeword)
	res.ChannelBER = metrics.CalculateBER(codewordBits, noisyBits)

	// 4. Decode and measure.
	noisy := noisyBits.Bytes()
	decoded, ok := codec.Decode(noisy)
	recoveredBits := bitbuf.FromBytes(recovered(decoded, noisy, len(payload)))
	res.BERBefore = metrics.CalculateBER(payloadBits, recoveredBits)
	if scheme == ecc.SchemeNone {
		ok = metrics.FrameSuccess(payloadBits, recoveredBits)
	}
	res.ECCSuccess = ok
	res.BERAfter = res.BERBefore

	// 5. AI pass.
	if p.ctrl.ShouldUseAI(res.BERBefore, res.ECCSuccess) && p.corrector != nil {
		res.AIInvoked = true
		corr := p.corrector.Correct(ctx, noisyBits, cfg.SNRdB)
		if corr.Corrected {
			ref := payloadBits[:min(denoiser.OutputBits, len(payloadBits))]
			res.BERAfter = metrics.CalculateBER(ref, corr.Bits)
			res.AICorrected = true
			p.metrics.AIInvocations.WithLabelValues("corrected").Inc()
		} else {
			log.Printf("[AI] frame left uncorrected: %s", corr.Reason)
			p.metrics.AIInvocations.WithLabelValues("failed").Inc()
		}
	}

	elapsed := p.clock().Sub(start)
	res.LatencyMS = float64(elapsed) / float64(time.Millisecond)

	// 6. Telemetry and link checks.
	rec := telemetry.Record{
		RunID:       p.runID,
		SNRdB:       cfg.SNRdB,
		NoiseType:   cfg.Noise,
		ECCScheme:   scheme,
		ECCSuccess:  res.ECCSuccess,
		ChannelBER:  res.ChannelBER,
		BERBefore:   res.BERBefore,
		BERAfter:    res.BERAfter,
		AICorrected: res.AICorrected,
		LatencyMS:   res.LatencyMS,
		Timestamp:   p.clock().UTC(),
	}
	res.Eval = p.harness.Run(rec)
	for _, m := range res.Eval.Metrics {
		if !m.Pass && (m.Name == "residual_ber" || m.Name == "silent_miscorrection") {
			p.metrics.EvalFailures.WithLabelValues(m.Name).Inc()
		}
	}
	if p.sink != nil {
		if err := p.sink.Record(ctx, rec); err != nil {
			log.Printf("[DB] telemetry write failed: %v", err)
		}
	}

	// 7. Feed the controller.
	p.ctrl.LogFrame(cfg.SNRdB, res.BERBefore, scheme, res.ECCSuccess)

	p.metrics.Frames.WithLabelValues(string(scheme), string(cfg.Noise), outcomeLabel(res.ECCSuccess)).Inc()
	p.metrics.BERBefore.WithLabelValues(string(scheme)).Observe(res.BERBefore)
	p.metrics.Duration.Observe(elapsed.Seconds())

	log.Printf("[TX] scheme=%s noise=%s snr=%.2f ecc_ok=%v channel_ber=%.4f ber_before=%.4f ber_after=%.4f ai=%v",
		scheme, cfg.Noise, cfg.SNRdB, res.ECCSuccess, res.ChannelBER, res.BERBefore, res.BERAfter, res.AICorrected)
	return res, nil
}

// #endregion transmit

// #region helpers

// send draws the payload, encodes it and passes the codeword bits through the
// channel. It holds mu for every rng draw.
func (p *Pipeline) send(codec ecc.Codec, cfg config.Resolved) (payload, codeword []byte, noisy bitbuf.Bits) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payload = make([]byte, cfg.PayloadSize)
	for i := range payload {
		payload[i] = byte(p.rng.UintN(256))
	}
	codeword = codec.Encode(payload)
	noisy = channel.Impair(p.rng, cfg.Noise, bitbuf.FromBytes(codeword), cfg.SNRdB, p.burst)
	return payload, codeword, noisy
}

// recovered picks the bytes to score against the payload: the decoder output,
// or the systematic prefix of the noisy codeword when the decoder gave nothing.
func recovered(decoded, noisy []byte, payloadLen int) []byte {
	if len(decoded) > 0 || payloadLen == 0 {
		return decoded
	}
	return noisy[:min(len(noisy), payloadLen)]
}

func (p *Pipeline) logDecision(d controller.Decision) {
	if p.decisions == nil {
		return
	}
	stats, err := logging.EncodeRecord(logging.DecisionRecord{
		Samples:     d.Stats.Samples,
		AvgSNR:      d.Stats.AvgSNR,
		AvgBER:      d.Stats.AvgBER,
		SuccessRate: d.Stats.SuccessRate,
		LastUsed:    string(d.LastUsed),
		WindowSize:  p.ctrl.Config().WindowSize,
	})
	if err != nil {
		log.Printf("[CTRL] decision snapshot: %v", err)
	}
	err = p.decisions.LogDecision(logging.DecisionEntry{
		RunID:     p.runID,
		SNRdB:     d.CurrentSNR,
		Scheme:    string(d.Scheme),
		Rule:      d.Rule,
		Reason:    d.Reason,
		StatsJSON: stats,
		CreatedAt: p.clock().UTC(),
	})
	if err != nil {
		log.Printf("[DB] decision log write failed: %v", err)
	}
}

// #endregion helpers
