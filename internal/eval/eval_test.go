package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

func cleanRecord() telemetry.Record {
	return telemetry.Record{
		ECCScheme:  ecc.SchemeReedSolomon,
		ECCSuccess: true,
		ChannelBER: 0.01,
	}
}

func metric(t *testing.T, res EvalResult, name string) EvalMetric {
	t.Helper()
	for _, m := range res.Metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %s not found in %+v", name, res.Metrics)
	return EvalMetric{}
}

func TestEvalPassesOnCleanFrame(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	result := h.Run(cleanRecord())

	if !result.Passed {
		t.Fatalf("expected pass on clean frame, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 3 {
		t.Fatalf("expected 3 metrics without ai, got %d", len(result.Metrics))
	}
}

func TestEvalFailsOnResidualBER(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	rec := cleanRecord()
	rec.ECCSuccess = false
	rec.BERBefore = 0.2

	result := h.Run(rec)

	if result.Passed {
		t.Fatal("expected fail on residual ber")
	}
	if metric(t, result, "residual_ber").Pass {
		t.Fatal("expected residual_ber to fail")
	}
	if !metric(t, result, "silent_miscorrection").Pass {
		t.Fatal("reported failure is not a silent miscorrection")
	}
}

func TestEvalFlagsSilentMiscorrection(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	rec := cleanRecord()
	rec.ECCScheme = ecc.SchemeHamming
	rec.BERBefore = 0.05

	result := h.Run(rec)

	if result.Passed {
		t.Fatal("expected fail on silent miscorrection")
	}
	if !strings.Contains(result.Reason, "2 checks") {
		t.Fatalf("expected both blocking checks in reason, got %q", result.Reason)
	}
}

func TestEvalChannelBERInformationalOnly(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	rec := cleanRecord()
	rec.ChannelBER = 0.3

	result := h.Run(rec)

	if !result.Passed {
		t.Fatalf("channel ber should be informational, not blocking: %s", result.Reason)
	}
	if metric(t, result, "channel_ber").Pass {
		t.Fatal("channel_ber metric should show pass=false above baseline")
	}
}

func TestEvalAIGain(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	rec := cleanRecord()
	rec.ECCSuccess = false
	rec.BERBefore = 0.2
	rec.BERAfter = 0.3
	rec.AICorrected = true

	result := h.Run(rec)

	m := metric(t, result, "ai_gain")
	if m.Pass {
		t.Fatal("expected negative ai gain to show pass=false")
	}
	if len(result.Metrics) != 4 {
		t.Fatalf("expected 4 metrics with ai, got %d", len(result.Metrics))
	}
}
