package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// #region service

// Service is the process-level configuration shared by the commands.
type Service struct {
	DBPath       string
	DenoiserAddr string // empty disables the AI correction pass
	AITimeout    time.Duration
	Window       int
	MaxHistory   int
	MetricsAddr  string // empty disables the /metrics listener
	Seed         uint64 // 0 means seed from the clock
}

// LoadService reads the service settings from the environment. The given
// dotenv files (".env" when none) are loaded first; a missing file is not an
// error and variables already set in the environment win.
func LoadService(envFiles ...string) (Service, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Service{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	svc := Service{
		DBPath:       envOr("SATLINK_DB", "satlink.db"),
		DenoiserAddr: envOr("DENOISER_ADDR", ""),
		MetricsAddr:  envOr("METRICS_ADDR", ""),
	}

	var err error
	if svc.AITimeout, err = time.ParseDuration(envOr("AI_TIMEOUT", "2s")); err != nil {
		return Service{}, fmt.Errorf("parse AI_TIMEOUT: %w", err)
	}
	if svc.AITimeout <= 0 {
		return Service{}, fmt.Errorf("AI_TIMEOUT must be positive, got %s", svc.AITimeout)
	}
	if svc.Window, err = strconv.Atoi(envOr("CONTROLLER_WINDOW", "10")); err != nil {
		return Service{}, fmt.Errorf("parse CONTROLLER_WINDOW: %w", err)
	}
	if svc.MaxHistory, err = strconv.Atoi(envOr("CONTROLLER_MAX_HISTORY", "0")); err != nil {
		return Service{}, fmt.Errorf("parse CONTROLLER_MAX_HISTORY: %w", err)
	}
	if svc.Seed, err = strconv.ParseUint(envOr("SATLINK_SEED", "0"), 10, 64); err != nil {
		return Service{}, fmt.Errorf("parse SATLINK_SEED: %w", err)
	}
	return svc, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion service
