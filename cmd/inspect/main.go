package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/logging"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to satlink.db")
	runID := flag.String("run", "", "restrict to one run id")
	scheme := flag.String("scheme", "", "restrict the frame list to one ecc scheme")
	last := flag.Int("last", 20, "show N most recent rows")
	mode := flag.String("mode", "frames", "frames | summary | decisions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/satlink.db [--mode frames|summary|decisions] [--run id] [--scheme name] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := telemetry.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	switch *mode {
	case "frames":
		err = runFramesMode(ctx, store, telemetry.Filter{RunID: *runID, Scheme: ecc.SchemeID(*scheme), Limit: *last}, *jsonOut)
	case "summary":
		err = runSummaryMode(ctx, store, *runID, *jsonOut)
	case "decisions":
		err = runDecisionsMode(store, *runID, *last, *jsonOut)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region frames-mode

func runFramesMode(ctx context.Context, store *telemetry.Store, f telemetry.Filter, jsonOut bool) error {
	records, err := store.List(ctx, f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no frames found")
		return nil
	}

	// Store returns newest first; print chronologically.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if jsonOut {
		return printJSON(records)
	}

	fmt.Printf("%-10s  %-13s  %-7s  %7s  %-5s  %8s  %8s  %8s  %-3s  %8s  %s\n",
		"Frame", "Scheme", "Noise", "SNR", "ECC", "Chan BER", "BER", "BER AI", "AI", "Latency", "Time")
	fmt.Printf("%-10s+-%-13s+-%-7s+-%7s+-%-5s+-%8s+-%8s+-%8s+-%-3s+-%8s+-%s\n",
		"----------", "-------------", "-------", "-------", "-----", "--------", "--------", "--------", "---", "--------", "--------------------")
	for _, r := range records {
		fmt.Printf("%-10s  %-13s  %-7s  %7.2f  %-5s  %8.4f  %8.4f  %8.4f  %-3s  %6.2fms  %s\n",
			shortID(r.ID), r.ECCScheme, r.NoiseType, r.SNRdB, okMark(r.ECCSuccess), r.ChannelBER,
			r.BERBefore, r.BERAfter, yesNo(r.AICorrected), r.LatencyMS, r.Timestamp.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion frames-mode

// #region summary-mode

func runSummaryMode(ctx context.Context, store *telemetry.Store, runID string, jsonOut bool) error {
	sums, err := store.Summary(ctx, runID)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Fprintln(os.Stderr, "no frames found")
		return nil
	}
	if jsonOut {
		return printJSON(sums)
	}

	fmt.Printf("%-13s  %7s  %8s  %8s  %10s  %10s  %6s  %8s\n",
		"Scheme", "Frames", "Success", "Avg SNR", "BER", "BER AI", "AI", "Latency")
	for _, s := range sums {
		fmt.Printf("%-13s  %7d  %7.1f%%  %8.2f  %10.6f  %10.6f  %6d  %6.2fms\n",
			s.Scheme, s.Frames, s.SuccessRate*100, s.AvgSNR, s.AvgBERBefore, s.AvgBERAfter, s.AICorrections, s.AvgLatencyMS)
	}
	return nil
}

// #endregion summary-mode

// #region decisions-mode

type decisionRow struct {
	RunID     string                  `json:"run_id"`
	SNRdB     float64                 `json:"snr_db"`
	Scheme    string                  `json:"scheme"`
	Rule      int                     `json:"rule"`
	Reason    string                  `json:"reason"`
	Stats     *logging.DecisionRecord `json:"stats,omitempty"`
	CreatedAt string                  `json:"created_at"`
}

func runDecisionsMode(store *telemetry.Store, runID string, last int, jsonOut bool) error {
	entries, err := logging.ListDecisions(store.DB(), runID, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	rows := make([]decisionRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = decisionRow{
			RunID:     e.RunID,
			SNRdB:     e.SNRdB,
			Scheme:    e.Scheme,
			Rule:      e.Rule,
			Reason:    e.Reason,
			Stats:     parseDecisionRecord(e.StatsJSON),
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-7s  %-13s  %4s  %8s  %7s  %s\n", "SNR", "Scheme", "Rule", "Avg BER", "Window", "Reason")
	for _, r := range rows {
		avg, window := "-", "-"
		if r.Stats != nil {
			avg = fmt.Sprintf("%.4f", r.Stats.AvgBER)
			window = fmt.Sprintf("%d/%d", r.Stats.Samples, r.Stats.WindowSize)
		}
		fmt.Printf("%7.2f  %-13s  %4d  %8s  %7s  %s\n", r.SNRdB, r.Scheme, r.Rule, avg, window, r.Reason)
	}
	return nil
}

// #endregion decisions-mode

// #region output

func parseDecisionRecord(statsJSON string) *logging.DecisionRecord {
	if statsJSON == "" {
		return nil
	}
	var rec logging.DecisionRecord
	if err := json.Unmarshal([]byte(statsJSON), &rec); err != nil {
		return nil
	}
	return &rec
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func okMark(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// #endregion output
