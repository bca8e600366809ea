// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Input is the path to the flat outcome table (CSV).
	Input string `koanf:"input"`

	// ParquetOut is the path for the columnar posterior output.
	ParquetOut string `koanf:"parquet_out"`

	// JSONOut is the path for the record-oriented interchange output.
	JSONOut string `koanf:"json_out"`

	// Confidence is the credible-interval confidence level, in (0,1).
	Confidence float64 `koanf:"confidence"`

	// MinAttempts drops player-zone rows below this many attempts.
	MinAttempts int `koanf:"min_attempts"`

	// BucketBounds are the sample-size bucket boundaries for reporting,
	// strictly increasing.
	BucketBounds []float64 `koanf:"bucket_bounds"`

	// MaxBadFraction is the hard ceiling on the malformed-input fraction
	// before the whole run fails, in [0,1].
	MaxBadFraction float64 `koanf:"max_bad_fraction"`

	// Strict makes malformed input fatal instead of skip-and-count.
	Strict bool `koanf:"strict"`

	// WorkerCount sets the number of posterior workers.
	WorkerCount int `koanf:"worker_count"`

	// MetricsAddr, when set, exposes prometheus metrics during the run,
	// e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// TopN bounds the ranking report size.
	TopN int `koanf:"top_n"`

	// RankZone selects the zone for the top-N ranking report.
	RankZone string `koanf:"rank_zone"`

	// RankMinAttempts is the volume cutoff for the top-N ranking report.
	RankMinAttempts int `koanf:"rank_min_attempts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Input:           "data/outcomes.csv",
		ParquetOut:      "data/posteriors.parquet",
		JSONOut:         "data/posteriors.json",
		Confidence:      0.95,
		MinAttempts:     5,
		BucketBounds:    []float64{20, 50, 100, 500},
		MaxBadFraction:  0.5,
		Strict:          false,
		WorkerCount:     runtime.NumCPU(),
		TopN:            10,
		RankZone:        "Above the Break 3",
		RankMinAttempts: 100,
	}
}

// Validate checks invariants on configured values.
func (c *Config) Validate() error {
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return errInvalid("confidence must lie in (0,1)")
	}
	if c.MinAttempts < 1 {
		return errInvalid("min_attempts must be >= 1")
	}
	if len(c.BucketBounds) == 0 {
		return errInvalid("bucket_bounds must not be empty")
	}
	for i := 1; i < len(c.BucketBounds); i++ {
		if c.BucketBounds[i] <= c.BucketBounds[i-1] {
			return errInvalid("bucket_bounds must be strictly increasing")
		}
	}
	if c.MaxBadFraction < 0 || c.MaxBadFraction > 1 {
		return errInvalid("max_bad_fraction must lie in [0,1]")
	}
	if c.WorkerCount < 1 {
		return errInvalid("worker_count must be >= 1")
	}
	if c.TopN < 1 {
		return errInvalid("top_n must be >= 1")
	}
	return nil
}
