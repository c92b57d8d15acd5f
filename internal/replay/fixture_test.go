package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region fixture-tests

// TestFixture_LinkSession replays the link_session fixture and compares each
// frame's recommendation against the expected one. Any change to the
// selection rules or thresholds shows up here.
func TestFixture_LinkSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "link_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, ctrl := Replay(f.History, f.ToFrames(), f.Config.ToControllerConfig())

	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}
	for _, m := range Compare(results, f.ExpectedResults) {
		t.Errorf("frame %d (%s): expected %s rule %d, got %s rule %d use_ai=%v (reason: %s)",
			m.Index, m.FrameID, m.Expected.Scheme, m.Expected.Rule, m.Actual.Scheme, m.Actual.Rule, m.Actual.UseAI, m.Actual.Reason)
	}
	if ctrl.Len() != 1+len(f.Frames) {
		t.Errorf("expected history of %d, got %d", 1+len(f.Frames), ctrl.Len())
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestWriteFixtureRoundTrip(t *testing.T) {
	yes := true
	in := &Fixture{
		Description: "round trip",
		Config:      FixtureConfig{WindowSize: 5},
		History:     []controller.Sample{{SNRdB: 8, BER: 0.01, ECCUsed: ecc.SchemeCRC, Success: true}},
		Frames:      []FixtureFrame{{FrameID: "a", SNRdB: 3, BER: 0.2}},
		ExpectedResults: []FixtureExpectedResult{
			{FrameID: "a", Scheme: ecc.SchemeReedSolomon, Rule: 5, UseAI: &yes},
		},
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteFixture(path, in); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	out, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if out.History[0] != in.History[0] || out.Frames[0] != in.Frames[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.ExpectedResults[0].UseAI == nil || !*out.ExpectedResults[0].UseAI {
		t.Fatal("expected use_ai to survive the round trip")
	}
}

func TestToControllerConfigDefaults(t *testing.T) {
	var fc FixtureConfig
	cfg := fc.ToControllerConfig()
	if cfg.WindowSize != 10 || cfg.Gate.BERThreshold != 0.1 {
		t.Fatalf("expected controller defaults, got %+v", cfg)
	}
}

// #endregion fixture-tests

// #region telemetry-import-tests

func TestFramesFromRecordsReplayAsRecorded(t *testing.T) {
	records := []telemetry.Record{
		{ID: "0123456789abcdef", SNRdB: 3, ECCScheme: ecc.SchemeReedSolomon, BERBefore: 0.3},
		{ID: "short", SNRdB: 15, ECCScheme: ecc.SchemeCRC, BERBefore: 0, ECCSuccess: true},
	}

	frames := FramesFromRecords(records)
	if frames[0].FrameID != "01234567" || frames[1].FrameID != "short" {
		t.Fatalf("unexpected frame ids: %s %s", frames[0].FrameID, frames[1].FrameID)
	}

	f := &Fixture{Frames: frames}
	results, ctrl := Replay(nil, f.ToFrames(), controller.DefaultConfig())
	if results[1].Logged != ecc.SchemeCRC {
		t.Fatalf("expected recorded scheme to be logged, got %s", results[1].Logged)
	}
	hist := ctrl.History()
	samples := SamplesFromRecords(records)
	for i := range samples {
		if hist[i] != samples[i] {
			t.Fatalf("sample %d: replayed %+v, recorded %+v", i, hist[i], samples[i])
		}
	}

	exp := ExpectFromResults(results)
	if len(Compare(results, exp)) != 0 {
		t.Fatal("results must match their own expectations")
	}
}

// #endregion telemetry-import-tests
