// Package config defines process configuration and its layered loading.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file. Empty keeps state and content in memory.
	DBPath string `koanf:"db_path"`
	// TaxonomyFile optionally replaces the built-in award catalogue.
	TaxonomyFile string `koanf:"taxonomy_file"`

	// MatchThreshold is the similarity at which a criterion matches.
	MatchThreshold float64 `koanf:"match_threshold"`
	// NearlyReadyRate and ReadyRate are the readiness cutoffs.
	NearlyReadyRate float64 `koanf:"nearly_ready_rate"`
	ReadyRate       float64 `koanf:"ready_rate"`

	// WorkerCount sets the number of async analysis workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the async request queue.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize bounds the pending-submission window.
	DedupeSize int `koanf:"dedupe_size"`
	// BatchConcurrency bounds parallel matching in batch analysis.
	BatchConcurrency int `koanf:"batch_concurrency"`
	// StoreRetryAttempts bounds retries of busy SQLite writes.
	StoreRetryAttempts int `koanf:"store_retry_attempts"`
}

// New returns a Config holding the defaults. The context is reserved for
// loaders that need it.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		MatchThreshold:     0.15,
		NearlyReadyRate:    0.5,
		ReadyRate:          1.0,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1024,
		DedupeSize:         10_000,
		BatchConcurrency:   runtime.NumCPU(),
		StoreRetryAttempts: 5,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MatchThreshold <= 0 || c.MatchThreshold > 1:
		return fmt.Errorf("%w: match_threshold %v outside (0,1]", ErrInvalidConfig, c.MatchThreshold)
	case c.ReadyRate <= 0 || c.ReadyRate > 1:
		return fmt.Errorf("%w: ready_rate %v outside (0,1]", ErrInvalidConfig, c.ReadyRate)
	case c.NearlyReadyRate <= 0 || c.NearlyReadyRate > 1:
		return fmt.Errorf("%w: nearly_ready_rate %v outside (0,1]", ErrInvalidConfig, c.NearlyReadyRate)
	case c.NearlyReadyRate > c.ReadyRate:
		return fmt.Errorf("%w: nearly_ready_rate %v above ready_rate %v", ErrInvalidConfig, c.NearlyReadyRate, c.ReadyRate)
	case c.WorkerCount <= 0, c.QueueSize <= 0, c.DedupeSize <= 0, c.BatchConcurrency <= 0, c.StoreRetryAttempts <= 0:
		return fmt.Errorf("%w: worker_count, queue_size, dedupe_size, batch_concurrency and store_retry_attempts must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
