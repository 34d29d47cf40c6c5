package config

import (
	"os"
	"strconv"

	"goclean/internal/errors"
)

// Config represents the complete session configuration
type Config struct {
	Database DatabaseConfig
	Data     DataConfig
	Session  SessionConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// DataConfig holds dataset input settings
type DataConfig struct {
	// File is the raw dataset (.xlsx or .csv).
	File string
}

// SessionConfig holds the functional parameters of one cleaning session.
// These are hard inputs: two sessions with the same data and the same
// SessionConfig produce identical domain batches.
type SessionConfig struct {
	// Seed initializes every random stream of the session.
	Seed int64
	// CorrelationStrength is the minimum absolute correlation for a
	// conditioning attribute to contribute co-occurrence candidates.
	CorrelationStrength float64
	// TopPercentile is the cumulative-probability mass retained when pruning
	// co-occurrence candidate lists. Must be in [0, 1).
	TopPercentile float64
	// DomainThreshold drops posterior candidates below this confidence
	// during refinement.
	DomainThreshold float64
	// WeakLabelThreshold is the posterior confidence required to assert a
	// weak label. A value of 1 combined with DomainThreshold 0 skips
	// refinement entirely.
	WeakLabelThreshold float64
	// MaxDomain caps the refined domain size.
	MaxDomain int
	// MaxSample caps the random-fallback sample size.
	MaxSample int
	// EstimatorEpochs and EstimatorBatchSize are forwarded to the posterior
	// estimator's training step.
	EstimatorEpochs    int
	EstimatorBatchSize int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			File: os.Getenv("DATA_FILE"),
		},
		Session: SessionConfig{
			Seed:                getEnvInt64OrDefault("RANDOM_SEED", 42),
			CorrelationStrength: getEnvFloatOrDefault("COR_STRENGTH", 0.05),
			TopPercentile:       getEnvFloatOrDefault("TOP_PERCENTILE", 0.9),
			DomainThreshold:     getEnvFloatOrDefault("DOMAIN_THRESH", 0),
			WeakLabelThreshold:  getEnvFloatOrDefault("WEAK_LABEL_THRESH", 0.9),
			MaxDomain:           getEnvIntOrDefault("MAX_DOMAIN", 10000),
			MaxSample:           getEnvIntOrDefault("MAX_SAMPLE", 5),
			EstimatorEpochs:     getEnvIntOrDefault("ESTIMATOR_EPOCHS", 3),
			EstimatorBatchSize:  getEnvIntOrDefault("ESTIMATOR_BATCH_SIZE", 32),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks the session parameter ranges.
func (c *Config) Validate() error {
	s := c.Session
	if s.TopPercentile < 0 || s.TopPercentile >= 1 {
		return errors.ConfigInvalid("TOP_PERCENTILE must be in [0, 1)")
	}
	if s.DomainThreshold < 0 || s.DomainThreshold > 1 {
		return errors.ConfigInvalid("DOMAIN_THRESH must be in [0, 1]")
	}
	if s.WeakLabelThreshold < 0 || s.WeakLabelThreshold > 1 {
		return errors.ConfigInvalid("WEAK_LABEL_THRESH must be in [0, 1]")
	}
	if s.MaxDomain < 1 {
		return errors.ConfigInvalid("MAX_DOMAIN must be at least 1")
	}
	if s.MaxSample < 1 {
		return errors.ConfigInvalid("MAX_SAMPLE must be at least 1")
	}
	if s.EstimatorEpochs < 1 || s.EstimatorBatchSize < 1 {
		return errors.ConfigInvalid("estimator epochs and batch size must be positive")
	}
	return nil
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvInt64OrDefault(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
