package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/replay"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to satlink.db (DB mode)")
	runID := flag.String("run", "", "restrict DB mode to one run")
	limit := flag.Int("limit", 1000, "most recent telemetry rows to replay in DB mode")
	window := flag.Int("window", 10, "controller window size in DB mode")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/satlink.db [--run ID] [--limit N] [--window N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *runID, *limit, *window)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode replays recorded frames oldest first and shows what the
// controller would have recommended before each one next to what was sent.
// Frames sent with a fixed scheme legitimately differ, so this mode never
// fails on divergence.
func runDBMode(dbPath, runID string, limit, window int) int {
	store, err := telemetry.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	records, err := store.List(context.Background(), telemetry.Filter{RunID: runID, Limit: limit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "list telemetry: %v\n", err)
		return 2
	}
	if len(records) == 0 {
		fmt.Println("No telemetry rows found.")
		return 0
	}
	slices.Reverse(records)

	cfg := controller.DefaultConfig()
	cfg.WindowSize = window
	fixture := &replay.Fixture{Frames: replay.FramesFromRecords(records)}
	results, ctrl := replay.Replay(nil, fixture.ToFrames(), cfg)

	fmt.Printf("%-10s| %-8s| %-10s| %-12s| %-5s| %s\n", "Frame", "SNR", "Recorded", "Recommended", "Rule", "AI")
	fmt.Printf("%-10s+%-9s+%-11s+%-13s+%-6s+%s\n",
		"----------", "---------", "-----------", "-------------", "------", "----")
	agree := 0
	for i, r := range results {
		recorded := records[i].ECCScheme
		if recorded == r.Scheme {
			agree++
		}
		fmt.Printf("%-10s| %-8.2f| %-10s| %-12s| %-5d| %s\n",
			r.FrameID, records[i].SNRdB, recorded, r.Scheme, r.Rule, yesNo(r.UseAI))
	}

	sum := replay.Summarize(results, ctrl)
	fmt.Printf("\nSummary: %d frames, %d agree with recommendation, %d AI gate hits\n",
		sum.TotalFrames, agree, sum.AIInvocations)
	return 0
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, _ := replay.Replay(f.History, f.ToFrames(), f.Config.ToControllerConfig())
	return printComparison(results, f.ExpectedResults)
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, expected []replay.FixtureExpectedResult) int {
	fmt.Printf("%-10s| %-10s| %-10s| %-5s| %s\n", "Frame", "Expected", "Replayed", "Rule", "Match")
	fmt.Printf("%-10s+%-11s+%-11s+%-6s+%s\n",
		"----------", "-----------", "-----------", "------", "------")

	bad := map[int]bool{}
	for _, m := range replay.Compare(results, expected) {
		bad[m.Index] = true
	}

	for i, exp := range expected {
		got, rule := "-", "-"
		if i < len(results) {
			got = string(results[i].Scheme)
			rule = fmt.Sprint(results[i].Rule)
		}
		match := "OK"
		if bad[i] {
			match = "DIFF"
		}
		fmt.Printf("%-10s| %-10s| %-10s| %-5s| %s\n", exp.FrameID, exp.Scheme, got, rule, match)
	}

	diverge := len(bad)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(expected), len(expected)-diverge, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// #endregion output
