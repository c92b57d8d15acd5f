package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/satlink/go-controller/internal/config"
	"github.com/danielpatrickdp/satlink/go-controller/internal/controller"
	"github.com/danielpatrickdp/satlink/go-controller/internal/denoiser"
	"github.com/danielpatrickdp/satlink/go-controller/internal/telemetry"
	"github.com/danielpatrickdp/satlink/go-controller/internal/transmit"
)

// #region main
func main() {
	svc, err := config.LoadService()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Telemetry store
	store, err := telemetry.NewStore(svc.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// AI correction service, optional
	var corrector denoiser.Corrector
	if svc.DenoiserAddr != "" {
		client, err := denoiser.NewClient(svc.DenoiserAddr, svc.AITimeout)
		if err != nil {
			log.Fatalf("failed to connect to denoiser at %s: %v", svc.DenoiserAddr, err)
		}
		defer client.Close()
		corrector = client
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := transmit.NewMetrics(reg)
	if svc.MetricsAddr != "" {
		srv := &http.Server{Addr: svc.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[METRICS] listener stopped: %v", err)
			}
		}()
		defer srv.Close()
	}

	seed := svc.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	ctrl := controller.New(controller.Config{WindowSize: svc.Window, MaxHistory: svc.MaxHistory})
	pipeline := transmit.New(transmit.Options{
		Controller: ctrl,
		Corrector:  corrector,
		Sink:       store,
		Decisions:  store,
		Metrics:    metrics,
		Rand:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	})

	fmt.Fprintln(os.Stderr, "satlink ready.")
	fmt.Fprintf(os.Stderr, "  DB: %s | Denoiser: %s | Run: %s | Seed: %d\n",
		svc.DBPath, orNone(svc.DenoiserAddr), pipeline.RunID(), seed)
	fmt.Fprintln(os.Stderr, "One JSON request per line, empty line for defaults ('quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}

		req := config.DefaultRequest()
		if line != "" {
			if req, err = config.ParseRequest([]byte(line)); err != nil {
				log.Printf("bad request: %v", err)
				continue
			}
		}

		res, err := pipeline.Transmit(ctx, req)
		if err != nil {
			log.Printf("transmit: %v", err)
			break
		}
		if err := enc.Encode(res); err != nil {
			log.Printf("write result: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("read stdin: %v", err)
	}
}

// #endregion main

// #region helpers
func orNone(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}

// #endregion helpers
