package config

import (
	"testing"

	"goclean/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RANDOM_SEED", "COR_STRENGTH", "TOP_PERCENTILE", "DOMAIN_THRESH",
		"WEAK_LABEL_THRESH", "MAX_DOMAIN", "MAX_SAMPLE",
		"ESTIMATOR_EPOCHS", "ESTIMATOR_BATCH_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Session.Seed)
	assert.Equal(t, 0.05, cfg.Session.CorrelationStrength)
	assert.Equal(t, 0.9, cfg.Session.TopPercentile)
	assert.Equal(t, 0.0, cfg.Session.DomainThreshold)
	assert.Equal(t, 0.9, cfg.Session.WeakLabelThreshold)
	assert.Equal(t, 10000, cfg.Session.MaxDomain)
	assert.Equal(t, 5, cfg.Session.MaxSample)
	assert.Equal(t, 3, cfg.Session.EstimatorEpochs)
	assert.Equal(t, 32, cfg.Session.EstimatorBatchSize)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("COR_STRENGTH", "0.2")
	t.Setenv("TOP_PERCENTILE", "0.7")
	t.Setenv("WEAK_LABEL_THRESH", "0.95")
	t.Setenv("MAX_SAMPLE", "3")
	t.Setenv("DATABASE_URL", "postgres://localhost/goclean")
	t.Setenv("DATA_FILE", "hospital.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Session.Seed)
	assert.Equal(t, 0.2, cfg.Session.CorrelationStrength)
	assert.Equal(t, 0.7, cfg.Session.TopPercentile)
	assert.Equal(t, 0.95, cfg.Session.WeakLabelThreshold)
	assert.Equal(t, 3, cfg.Session.MaxSample)
	assert.Equal(t, "postgres://localhost/goclean", cfg.Database.URL)
	assert.Equal(t, "hospital.csv", cfg.Data.File)
}

func TestLoadFallsBackOnUnparseableValues(t *testing.T) {
	t.Setenv("RANDOM_SEED", "not-a-number")
	t.Setenv("TOP_PERCENTILE", "ninety percent")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Session.Seed)
	assert.Equal(t, 0.9, cfg.Session.TopPercentile)
}

func TestValidateRejectsOutOfRangeParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{"top percentile at one", func(s *SessionConfig) { s.TopPercentile = 1 }},
		{"negative top percentile", func(s *SessionConfig) { s.TopPercentile = -0.1 }},
		{"domain threshold above one", func(s *SessionConfig) { s.DomainThreshold = 1.5 }},
		{"negative weak label threshold", func(s *SessionConfig) { s.WeakLabelThreshold = -1 }},
		{"zero max domain", func(s *SessionConfig) { s.MaxDomain = 0 }},
		{"zero max sample", func(s *SessionConfig) { s.MaxSample = 0 }},
		{"zero estimator epochs", func(s *SessionConfig) { s.EstimatorEpochs = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tc.mutate(&cfg.Session)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
