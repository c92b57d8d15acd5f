package replay

import (
	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
)

// #region types

// Frame is one recorded transmission: the SNR the controller was asked about
// and the outcome that was then logged.
type Frame struct {
	FrameID string
	SNRdB   float64
	// Scheme overrides the controller's pick for the logged outcome, as for a
	// frame sent with auto_ecc off. Empty logs the controller's pick.
	Scheme  ecc.SchemeID
	BER     float64
	Success bool
}

// ReplayResult captures the controller's behaviour on one frame.
type ReplayResult struct {
	FrameID string
	Scheme  ecc.SchemeID // controller recommendation before the frame
	Rule    int
	Reason  string
	Logged  ecc.SchemeID // scheme recorded in history after the frame
	UseAI   bool
	Stats   controller.WindowStats
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalFrames   int
	ByScheme      map[ecc.SchemeID]int
	ByRule        map[int]int
	AIInvocations int
	HistoryLen    int
}

// #endregion types

// #region replay

// Replay builds a fresh controller from config, seeds it with history, then
// for each frame records the recommendation and AI gate verdict before logging
// the frame's outcome. It runs entirely in memory.
func Replay(history []controller.Sample, frames []Frame, config controller.Config) ([]ReplayResult, *controller.Controller) {
	ctrl := controller.New(config)
	for _, s := range history {
		ctrl.LogFrame(s.SNRdB, s.BER, s.ECCUsed, s.Success)
	}

	results := make([]ReplayResult, 0, len(frames))
	for _, f := range frames {
		d := ctrl.Decide(f.SNRdB)
		logged := d.Scheme
		if f.Scheme != "" {
			logged = f.Scheme
		}
		results = append(results, ReplayResult{
			FrameID: f.FrameID,
			Scheme:  d.Scheme,
			Rule:    d.Rule,
			Reason:  d.Reason,
			Logged:  logged,
			UseAI:   ctrl.ShouldUseAI(f.BER, f.Success),
			Stats:   d.Stats,
		})
		ctrl.LogFrame(f.SNRdB, f.BER, logged, f.Success)
	}
	return results, ctrl
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, ctrl *controller.Controller) ReplaySummary {
	s := ReplaySummary{
		TotalFrames: len(results),
		ByScheme:    map[ecc.SchemeID]int{},
		ByRule:      map[int]int{},
	}
	for _, r := range results {
		s.ByScheme[r.Scheme]++
		s.ByRule[r.Rule]++
		if r.UseAI {
			s.AIInvocations++
		}
	}
	if ctrl != nil {
		s.HistoryLen = ctrl.Len()
	}
	return s
}

// #endregion replay

// #region compare

// Mismatch is one frame whose replayed outcome differs from the fixture.
type Mismatch struct {
	Index    int
	FrameID  string
	Expected FixtureExpectedResult
	Actual   ReplayResult
}

// Compare checks results against the expected outcomes in order. Rule and
// UseAI are only checked when the fixture sets them.
func Compare(results []ReplayResult, expected []FixtureExpectedResult) []Mismatch {
	var out []Mismatch
	for i, exp := range expected {
		if i >= len(results) {
			out = append(out, Mismatch{Index: i, FrameID: exp.FrameID, Expected: exp})
			continue
		}
		act := results[i]
		bad := act.FrameID != exp.FrameID || act.Scheme != exp.Scheme
		if exp.Rule != 0 && act.Rule != exp.Rule {
			bad = true
		}
		if exp.UseAI != nil && act.UseAI != *exp.UseAI {
			bad = true
		}
		if bad {
			out = append(out, Mismatch{Index: i, FrameID: exp.FrameID, Expected: exp, Actual: act})
		}
	}
	return out
}

// #endregion compare
