package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/denoiser"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/sweep"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
	"github.com/danielpatrickdp/satlink/go-controller/internal/transmit"
)

// #region main

func main() {
	def := sweep.DefaultConfig()
	snrs := flag.String("snrs", joinFloats(def.SNRs), "comma-separated SNR values in dB")
	schemes := flag.String("schemes", joinSchemes(def.Schemes), "comma-separated schemes (auto lets the controller pick)")
	noises := flag.String("noises", joinNoises(def.Noises), "comma-separated noise types")
	frames := flag.Int("frames", def.Frames, "frames per cell")
	payload := flag.Int("payload", def.PayloadSize, "payload bytes per frame")
	workers := flag.Int("workers", 0, "parallel cells (0 = GOMAXPROCS)")
	seed := flag.Uint64("seed", 1, "rng seed")
	denoiserAddr := flag.String("denoiser", "", "denoiser gRPC address (empty disables the AI pass)")
	dbPath := flag.String("db", "", "also record every frame to this telemetry DB")
	jsonOut := flag.Bool("json", false, "print the report as JSON")
	outPath := flag.String("out", "", "write the report to this file instead of stdout")
	flag.Parse()

	cfg, err := buildConfig(*snrs, *schemes, *noises)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: fec-eval [--snrs 0,5,10] [--schemes crc,reed_solomon,auto] [--noises awgn,burst] [--frames N] [--json] [--out file]")
		os.Exit(2)
	}
	cfg.Frames = *frames
	cfg.PayloadSize = *payload
	cfg.Workers = *workers
	cfg.Seed = *seed

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var base transmit.Options
	if *denoiserAddr != "" {
		client, err := denoiser.NewClient(*denoiserAddr, denoiser.DefaultTimeout)
		if err != nil {
			log.Fatalf("failed to connect to denoiser at %s: %v", *denoiserAddr, err)
		}
		defer client.Close()
		base.Corrector = client
	}
	if *dbPath != "" {
		store, err := telemetry.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()
		base.Sink = store
		base.Decisions = store
	}

	report, err := sweep.Run(ctx, cfg, base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if *jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		_, err = fmt.Fprint(out, report.Markdown())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d cells, %d frames in %s\n", len(report.Cells), report.Frames, report.Duration.Round(time.Millisecond))
}

// #endregion main

// #region flags

func buildConfig(snrs, schemes, noises string) (sweep.Config, error) {
	var cfg sweep.Config
	for _, s := range splitList(snrs) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return cfg, fmt.Errorf("bad snr %q: %w", s, err)
		}
		cfg.SNRs = append(cfg.SNRs, v)
	}
	for _, s := range splitList(schemes) {
		if ecc.SchemeID(s) == sweep.SchemeAuto {
			cfg.Schemes = append(cfg.Schemes, sweep.SchemeAuto)
			continue
		}
		id, ok := ecc.ParseScheme(s)
		if !ok {
			return cfg, fmt.Errorf("unknown scheme %q", s)
		}
		cfg.Schemes = append(cfg.Schemes, id)
	}
	for _, s := range splitList(noises) {
		n, ok := channel.ParseNoise(s)
		if !ok {
			return cfg, fmt.Errorf("unknown noise type %q", s)
		}
		cfg.Noises = append(cfg.Noises, n)
	}
	if len(cfg.SNRs) == 0 || len(cfg.Schemes) == 0 || len(cfg.Noises) == 0 {
		return cfg, fmt.Errorf("snrs, schemes and noises must each be non-empty")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinSchemes(ids []ecc.SchemeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

func joinNoises(ns []channel.NoiseType) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// #endregion flags
