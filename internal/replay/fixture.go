package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/gate"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	History         []controller.Sample     `json:"history"`
	Frames          []FixtureFrame          `json:"frames"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureConfig mirrors controller.Config with JSON tags.
type FixtureConfig struct {
	WindowSize   int     `json:"window_size"`
	MaxHistory   int     `json:"max_history,omitempty"`
	BERThreshold float64 `json:"ai_ber_threshold"`
}

// FixtureFrame mirrors Frame with JSON tags.
type FixtureFrame struct {
	FrameID string  `json:"frame_id"`
	SNRdB   float64 `json:"snr_db"`
	Scheme  string  `json:"ecc_scheme,omitempty"`
	BER     float64 `json:"ber"`
	Success bool    `json:"success"`
}

// FixtureExpectedResult captures the expected recommendation per frame.
type FixtureExpectedResult struct {
	FrameID string       `json:"frame_id"`
	Scheme  ecc.SchemeID `json:"scheme"`
	Rule    int          `json:"rule,omitempty"`
	UseAI   *bool        `json:"use_ai,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToControllerConfig converts a FixtureConfig to a controller.Config. Zero
// fields take the controller defaults.
func (fc *FixtureConfig) ToControllerConfig() controller.Config {
	cfg := controller.DefaultConfig()
	if fc.WindowSize > 0 {
		cfg.WindowSize = fc.WindowSize
	}
	cfg.MaxHistory = fc.MaxHistory
	if fc.BERThreshold > 0 {
		cfg.Gate = gate.GateConfig{BERThreshold: fc.BERThreshold}
	}
	return cfg
}

// ToFrame converts a FixtureFrame to a replay Frame. An unrecognized scheme
// name is kept verbatim so the controller sees it as unknown.
func (ff *FixtureFrame) ToFrame() Frame {
	return Frame{
		FrameID: ff.FrameID,
		SNRdB:   ff.SNRdB,
		Scheme:  ecc.SchemeID(ff.Scheme),
		BER:     ff.BER,
		Success: ff.Success,
	}
}

// ToFrames converts every fixture frame.
func (f *Fixture) ToFrames() []Frame {
	out := make([]Frame, len(f.Frames))
	for i := range f.Frames {
		out[i] = f.Frames[i].ToFrame()
	}
	return out
}

// #endregion fixture-loader

// #region telemetry-import

// FramesFromRecords turns telemetry rows, oldest first, into replay frames.
// Each frame keeps the scheme that was actually used so the replayed history
// matches what was recorded.
func FramesFromRecords(records []telemetry.Record) []FixtureFrame {
	out := make([]FixtureFrame, len(records))
	for i, r := range records {
		out[i] = FixtureFrame{
			FrameID: shortID(r.ID),
			SNRdB:   r.SNRdB,
			Scheme:  string(r.ECCScheme),
			BER:     r.BERBefore,
			Success: r.ECCSuccess,
		}
	}
	return out
}

// SamplesFromRecords turns telemetry rows, oldest first, into controller
// history.
func SamplesFromRecords(records []telemetry.Record) []controller.Sample {
	out := make([]controller.Sample, len(records))
	for i, r := range records {
		out[i] = controller.Sample{SNRdB: r.SNRdB, BER: r.BERBefore, ECCUsed: r.ECCScheme, Success: r.ECCSuccess}
	}
	return out
}

// ExpectFromResults records results as the expected outcome of a fixture.
func ExpectFromResults(results []ReplayResult) []FixtureExpectedResult {
	out := make([]FixtureExpectedResult, len(results))
	for i, r := range results {
		useAI := r.UseAI
		out[i] = FixtureExpectedResult{FrameID: r.FrameID, Scheme: r.Scheme, Rule: r.Rule, UseAI: &useAI}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion telemetry-import
