package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/satlink/go-controller/internal/gate"
	"github.com/danielpatrickdp/satlink/go-controller/internal/replay"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to satlink.db")
	runID := flag.String("run", "", "export only this run")
	history := flag.Int("history", 20, "rows before the exported frames to seed controller history")
	last := flag.Int("last", 5, "number of most recent telemetry rows to export as frames")
	window := flag.Int("window", 10, "controller window size recorded in the fixture")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" || *last <= 0 {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--run ID] [--last N] [--history N] [--window N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *history, *last, *window, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, runID string, history, last, window int, outPath string) error {
	store, err := telemetry.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	records, err := store.List(context.Background(), telemetry.Filter{RunID: runID, Limit: history + last})
	if err != nil {
		return fmt.Errorf("list telemetry: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no telemetry rows found for run %q", runID)
	}
	slices.Reverse(records)

	split := max(len(records)-last, 0)
	fmt.Printf("Found %d rows: %d history, %d frames\n", len(records), split, len(records)-split)

	fixture := buildFixture(records[:split], records[split:], window)
	return replay.WriteFixture(outPath, fixture)
}

// #endregion extract

// #region output

// buildFixture pins the current controller behaviour: the expected results are
// whatever a replay of the exported rows produces today.
func buildFixture(history, frames []telemetry.Record, window int) *replay.Fixture {
	f := &replay.Fixture{
		Description: fmt.Sprintf("Telemetry export: %d history rows, %d frames", len(history), len(frames)),
		Config: replay.FixtureConfig{
			WindowSize:   window,
			BERThreshold: gate.DefaultGateConfig().BERThreshold,
		},
		History: replay.SamplesFromRecords(history),
		Frames:  replay.FramesFromRecords(frames),
	}

	results, _ := replay.Replay(f.History, f.ToFrames(), f.Config.ToControllerConfig())
	f.ExpectedResults = replay.ExpectFromResults(results)
	fmt.Printf("Pinned %d expected results\n", len(f.ExpectedResults))
	return f
}

// #endregion output
