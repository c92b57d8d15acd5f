package controller

import (
	"sync"
	"testing"

	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
)

func newWithHistory(samples ...Sample) *Controller {
	c := New(DefaultConfig())
	for _, s := range samples {
		c.LogFrame(s.SNRdB, s.BER, s.ECCUsed, s.Success)
	}
	return c
}

// #region scenario-tests

func TestEmptyHistoryDefaultsToReedSolomon(t *testing.T) {
	c := New(DefaultConfig())

	d := c.Decide(10.0)
	if d.Scheme != ecc.SchemeReedSolomon {
		t.Fatalf("expected reed_solomon, got %s", d.Scheme)
	}
	if d.Rule != 1 {
		t.Fatalf("expected rule 1, got %d", d.Rule)
	}
}

func TestHighSNRCleanHistoryPicksHamming(t *testing.T) {
	c := newWithHistory(Sample{SNRdB: 15, BER: 0.001, ECCUsed: ecc.SchemeHamming, Success: true})

	if got := c.OptimalECC(15.0); got != ecc.SchemeHamming {
		t.Fatalf("expected hamming, got %s", got)
	}
	if d := c.Decide(15.0); d.Rule != 3 {
		t.Fatalf("expected rule 3, got %d", d.Rule)
	}
}

func TestMediumSNRPreemptsEscalation(t *testing.T) {
	c := newWithHistory(
		Sample{SNRdB: 8, BER: 0.5, ECCUsed: ecc.SchemeCRC, Success: false},
		Sample{SNRdB: 8, BER: 0.4, ECCUsed: ecc.SchemeCRC, Success: false},
	)

	d := c.Decide(8.0)
	if d.Scheme != ecc.SchemeReedSolomon || d.Rule != 4 {
		t.Fatalf("expected reed_solomon via rule 4, got %s via rule %d", d.Scheme, d.Rule)
	}
}

func TestBandEdgesAreMedium(t *testing.T) {
	c := newWithHistory(Sample{SNRdB: 20, BER: 0.0, ECCUsed: ecc.SchemeHamming, Success: true})

	for _, snr := range []float64{6.0, 12.0} {
		if d := c.Decide(snr); d.Rule != 4 {
			t.Errorf("snr %.1f: expected rule 4, got %d", snr, d.Rule)
		}
	}
}

func TestLowSNRPicksReedSolomon(t *testing.T) {
	c := newWithHistory(Sample{SNRdB: 3, BER: 0.0, ECCUsed: ecc.SchemeHamming, Success: true})

	d := c.Decide(2.5)
	if d.Scheme != ecc.SchemeReedSolomon || d.Rule != 5 {
		t.Fatalf("expected reed_solomon via rule 5, got %s via rule %d", d.Scheme, d.Rule)
	}
}

func TestEscalationFromLastScheme(t *testing.T) {
	cases := []struct {
		last ecc.SchemeID
		want ecc.SchemeID
	}{
		{ecc.SchemeCRC, ecc.SchemeHamming},
		{ecc.SchemeHamming, ecc.SchemeReedSolomon},
		{ecc.SchemeReedSolomon, ecc.SchemeReedSolomon},
		{ecc.SchemeNone, ecc.SchemeReedSolomon},
	}
	for _, tc := range cases {
		c := newWithHistory(Sample{SNRdB: 14, BER: 0.2, ECCUsed: tc.last, Success: false})
		d := c.Decide(14.0)
		if d.Rule != 6 {
			t.Errorf("last=%s: expected rule 6, got %d", tc.last, d.Rule)
		}
		if d.Scheme != tc.want {
			t.Errorf("last=%s: expected %s, got %s", tc.last, tc.want, d.Scheme)
		}
	}
}

func TestFallbackRepeatsLastRecognizedScheme(t *testing.T) {
	c := newWithHistory(Sample{SNRdB: 14, BER: 0.05, ECCUsed: ecc.SchemeCRC, Success: true})
	if d := c.Decide(14.0); d.Scheme != ecc.SchemeCRC || d.Rule != 7 {
		t.Fatalf("expected crc via rule 7, got %s via rule %d", d.Scheme, d.Rule)
	}

	c = newWithHistory(Sample{SNRdB: 14, BER: 0.05, ECCUsed: ecc.SchemeNone, Success: true})
	if d := c.Decide(14.0); d.Scheme != ecc.SchemeReedSolomon || d.Rule != 7 {
		t.Fatalf("expected reed_solomon via rule 7, got %s via rule %d", d.Scheme, d.Rule)
	}
}

func TestBoundaryBERIsNotEscalation(t *testing.T) {
	// avg ber exactly 0.1 is not > 0.1, so rule 7 applies.
	c := newWithHistory(Sample{SNRdB: 14, BER: 0.1, ECCUsed: ecc.SchemeHamming, Success: true})
	if d := c.Decide(13.0); d.Rule != 7 || d.Scheme != ecc.SchemeHamming {
		t.Fatalf("expected hamming via rule 7, got %s via rule %d", d.Scheme, d.Rule)
	}
}

// #endregion scenario-tests

// #region window-tests

func TestWindowUsesOnlyRecentSamples(t *testing.T) {
	c := New(Config{WindowSize: 3})
	for i := 0; i < 5; i++ {
		c.LogFrame(14, 0.5, ecc.SchemeCRC, false)
	}
	for i := 0; i < 3; i++ {
		c.LogFrame(14, 0.0, ecc.SchemeHamming, true)
	}

	stats := c.Stats()
	if stats.Samples != 3 {
		t.Fatalf("expected 3 samples, got %d", stats.Samples)
	}
	if stats.AvgBER != 0 {
		t.Fatalf("expected avg ber 0 over the window, got %f", stats.AvgBER)
	}
	if stats.SuccessRate != 1 {
		t.Fatalf("expected success rate 1, got %f", stats.SuccessRate)
	}
	if got := c.OptimalECC(14); got != ecc.SchemeHamming {
		t.Fatalf("expected hamming once old failures leave the window, got %s", got)
	}
}

func TestStatsAverages(t *testing.T) {
	c := newWithHistory(
		Sample{SNRdB: 10, BER: 0.2, ECCUsed: ecc.SchemeCRC, Success: true},
		Sample{SNRdB: 20, BER: 0.0, ECCUsed: ecc.SchemeCRC, Success: false},
	)
	stats := c.Stats()
	if stats.AvgSNR != 15 {
		t.Errorf("expected avg snr 15, got %f", stats.AvgSNR)
	}
	if stats.AvgBER != 0.1 {
		t.Errorf("expected avg ber 0.1, got %f", stats.AvgBER)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %f", stats.SuccessRate)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	c := newWithHistory(
		Sample{SNRdB: 13, BER: 0.03, ECCUsed: ecc.SchemeHamming, Success: true},
		Sample{SNRdB: 14, BER: 0.02, ECCUsed: ecc.SchemeCRC, Success: true},
	)
	first := c.Decide(13.5)
	for i := 0; i < 10; i++ {
		if d := c.Decide(13.5); d != first {
			t.Fatalf("decision changed between calls: %+v vs %+v", first, d)
		}
	}
}

func TestMaxHistoryCap(t *testing.T) {
	c := New(Config{WindowSize: 2, MaxHistory: 4})
	for i := 0; i < 10; i++ {
		c.LogFrame(float64(i), 0, ecc.SchemeCRC, true)
	}
	hist := c.History()
	if len(hist) != 4 {
		t.Fatalf("expected 4 retained samples, got %d", len(hist))
	}
	if hist[0].SNRdB != 6 || hist[3].SNRdB != 9 {
		t.Fatalf("expected samples 6..9, got %v", hist)
	}
}

func TestUnboundedHistoryByDefault(t *testing.T) {
	c := New(DefaultConfig())
	for i := 0; i < 100; i++ {
		c.LogFrame(10, 0, ecc.SchemeReedSolomon, true)
	}
	if c.Len() != 100 {
		t.Fatalf("expected 100 samples, got %d", c.Len())
	}
}

func TestNonPositiveWindowFallsBack(t *testing.T) {
	c := New(Config{WindowSize: 0})
	if c.Config().WindowSize != 10 {
		t.Fatalf("expected window 10, got %d", c.Config().WindowSize)
	}
}

// #endregion window-tests

// #region ai-gate-tests

func TestShouldUseAI(t *testing.T) {
	c := New(DefaultConfig())
	cases := []struct {
		ber     float64
		success bool
		want    bool
	}{
		{0.05, true, false},
		{0.15, true, true},
		{0.0, false, true},
		{0.1, true, false},
	}
	for _, tc := range cases {
		if got := c.ShouldUseAI(tc.ber, tc.success); got != tc.want {
			t.Errorf("ShouldUseAI(%v, %v) = %v, want %v", tc.ber, tc.success, got, tc.want)
		}
	}
}

func TestEvaluateAIReportsTriggers(t *testing.T) {
	c := New(DefaultConfig())
	d := c.EvaluateAI(0.3, false)
	if !d.Invoke || len(d.Triggers) != 2 {
		t.Fatalf("expected invoke with 2 triggers, got %+v", d)
	}
}

// #endregion ai-gate-tests

// #region concurrency-tests

func TestConcurrentLogFrameAndDecide(t *testing.T) {
	c := New(Config{WindowSize: 10})
	const writers, perWriter = 8, 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.LogFrame(14, 0.2, ecc.SchemeCRC, false)
			}
		}()
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				d := c.Decide(14)
				if d.Rule != 1 && d.Scheme != ecc.SchemeHamming {
					t.Errorf("unexpected decision %+v", d)
					return
				}
				if d.Stats.Samples > 10 {
					t.Errorf("window larger than configured: %d", d.Stats.Samples)
					return
				}
			}
		}()
	}
	wg.Wait()

	if c.Len() != writers*perWriter {
		t.Fatalf("expected %d samples, got %d", writers*perWriter, c.Len())
	}
}

// #endregion concurrency-tests
