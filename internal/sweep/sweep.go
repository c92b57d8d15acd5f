// Package sweep measures every scheme over a grid of SNR and noise settings.
package sweep

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/config"
	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/transmit"
)

// #region types

// SchemeAuto marks cells where the controller picks the scheme per frame.
const SchemeAuto ecc.SchemeID = "auto"

// Config describes the grid. Each (SNR, scheme, noise) cell sends Frames
// frames of PayloadSize bytes.
type Config struct {
	SNRs        []float64
	Schemes     []ecc.SchemeID
	Noises      []channel.NoiseType
	Frames      int
	PayloadSize int
	Workers     int
	Seed        uint64
}

// DefaultConfig sweeps 0..20 dB in 4 dB steps over every scheme and noise type.
func DefaultConfig() Config {
	return Config{
		SNRs:        []float64{0, 4, 8, 12, 16, 20},
		Schemes:     append([]ecc.SchemeID{ecc.SchemeNone}, ecc.Schemes...),
		Noises:      []channel.NoiseType{channel.NoiseAWGN, channel.NoiseBurst, channel.NoiseFading},
		Frames:      20,
		PayloadSize: config.DefaultPayloadSize,
	}
}

// Cell is one grid point.
type Cell struct {
	SNRdB  float64           `json:"snr_db"`
	Scheme ecc.SchemeID      `json:"scheme"`
	Noise  channel.NoiseType `json:"noise"`
}

// CellResult aggregates the frames of one cell.
type CellResult struct {
	Cell
	Frames        int                  `json:"frames"`
	SuccessRate   float64              `json:"success_rate"`
	AvgChannelBER float64              `json:"avg_channel_ber"`
	AvgBERBefore  float64              `json:"avg_ber_before"`
	AvgBERAfter   float64              `json:"avg_ber_after"`
	AICorrections int                  `json:"ai_corrections"`
	EvalPassRate  float64              `json:"eval_pass_rate"`
	SchemesUsed   map[ecc.SchemeID]int `json:"schemes_used"`
}

// Report is the full sweep outcome, cells in grid order.
type Report struct {
	Cells    []CellResult  `json:"cells"`
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration_ns"`
}

// #endregion types

// #region run

// Run sends every cell's frames through its own pipeline built from base.
// Cells run on up to Workers goroutines and share Sink, Corrector and Metrics.
// Fixed-scheme cells also feed base.Controller. Auto cells each get a private
// controller with base.Controller's configuration, so their picks only see
// their own frames. Each cell draws from its own rng seeded from Seed and the
// cell index, so results do not depend on scheduling.
func Run(ctx context.Context, cfg Config, base transmit.Options) (Report, error) {
	cells := cfg.cells()
	if len(cells) == 0 {
		return Report{}, fmt.Errorf("sweep: empty grid")
	}
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctrlConfig := controller.DefaultConfig()
	if base.Controller != nil {
		ctrlConfig = base.Controller.Config()
	}

	start := time.Now()
	results := make([]CellResult, len(cells))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cell := range cells {
		g.Go(func() error {
			opts := base
			opts.Rand = rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
			if cell.Scheme == SchemeAuto {
				opts.Controller = controller.New(ctrlConfig)
			}
			res, err := runCell(ctx, transmit.New(opts), cell, cfg)
			if err != nil {
				return fmt.Errorf("cell %+v: %w", cell, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Cells: results, Duration: time.Since(start)}
	for _, r := range results {
		report.Frames += r.Frames
	}
	log.Printf("[SWEEP] %d cells, %d frames in %s", len(cells), report.Frames, report.Duration)
	return report, nil
}

func runCell(ctx context.Context, p *transmit.Pipeline, cell Cell, cfg Config) (CellResult, error) {
	req := config.Request{
		PayloadSize: cfg.PayloadSize,
		ECCScheme:   string(cell.Scheme),
		SNRdB:       cell.SNRdB,
		NoiseType:   string(cell.Noise),
	}
	if cell.Scheme == SchemeAuto {
		req.ECCScheme = string(config.DefaultScheme)
		req.AutoECC = true
	}

	var success, channelBER, before, after, passed []float64
	out := CellResult{Cell: cell, SchemesUsed: map[ecc.SchemeID]int{}}
	for f := 0; f < cfg.Frames; f++ {
		res, err := p.Transmit(ctx, req)
		if err != nil {
			return CellResult{}, err
		}
		success = append(success, boolValue(res.ECCSuccess))
		channelBER = append(channelBER, res.ChannelBER)
		before = append(before, res.BERBefore)
		after = append(after, res.BERAfter)
		passed = append(passed, boolValue(res.Eval.Passed))
		if res.AICorrected {
			out.AICorrections++
		}
		out.SchemesUsed[res.ECCUsed]++
	}

	out.Frames = cfg.Frames
	out.SuccessRate = stat.Mean(success, nil)
	out.AvgChannelBER = stat.Mean(channelBER, nil)
	out.AvgBERBefore = stat.Mean(before, nil)
	out.AvgBERAfter = stat.Mean(after, nil)
	out.EvalPassRate = stat.Mean(passed, nil)
	return out, nil
}

func (c Config) cells() []Cell {
	var cells []Cell
	for _, snr := range c.SNRs {
		for _, noise := range c.Noises {
			for _, scheme := range c.Schemes {
				cells = append(cells, Cell{SNRdB: snr, Scheme: scheme, Noise: noise})
			}
		}
	}
	return cells
}

// #endregion run

// #region report

// Markdown renders one table per noise type, schemes as rows and SNR as
// columns, each entry the decoder success rate and residual BER.
func (r Report) Markdown() string {
	var b strings.Builder
	byNoise := map[channel.NoiseType][]CellResult{}
	var noises []channel.NoiseType
	for _, c := range r.Cells {
		if _, seen := byNoise[c.Noise]; !seen {
			noises = append(noises, c.Noise)
		}
		byNoise[c.Noise] = append(byNoise[c.Noise], c)
	}

	fmt.Fprintf(&b, "# FEC sweep\n\n%d frames in %s\n", r.Frames, r.Duration.Round(time.Millisecond))
	for _, noise := range noises {
		cells := byNoise[noise]
		snrs := uniqueSNRs(cells)
		schemes := uniqueSchemes(cells)

		fmt.Fprintf(&b, "\n## %s\n\n| scheme |", noise)
		for _, snr := range snrs {
			fmt.Fprintf(&b, " %.1f dB |", snr)
		}
		b.WriteString("\n|---|")
		for range snrs {
			b.WriteString("---|")
		}
		b.WriteString("\n")

		for _, scheme := range schemes {
			fmt.Fprintf(&b, "| %s |", scheme)
			for _, snr := range snrs {
				c, ok := find(cells, snr, scheme)
				if !ok {
					b.WriteString(" - |")
					continue
				}
				fmt.Fprintf(&b, " %.0f%% / %.4f |", c.SuccessRate*100, c.AvgBERBefore)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func uniqueSNRs(cells []CellResult) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, c := range cells {
		if !seen[c.SNRdB] {
			seen[c.SNRdB] = true
			out = append(out, c.SNRdB)
		}
	}
	sort.Float64s(out)
	return out
}

func uniqueSchemes(cells []CellResult) []ecc.SchemeID {
	seen := map[ecc.SchemeID]bool{}
	var out []ecc.SchemeID
	for _, c := range cells {
		if !seen[c.Scheme] {
			seen[c.Scheme] = true
			out = append(out, c.Scheme)
		}
	}
	return out
}

func find(cells []CellResult, snr float64, scheme ecc.SchemeID) (CellResult, bool) {
	for _, c := range cells {
		if c.SNRdB == snr && c.Scheme == scheme {
			return c, true
		}
	}
	return CellResult{}, false
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion report
