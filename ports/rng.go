package ports

import (
	"context"
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations.
// The random-fallback sampler takes its stream from here rather than from
// ambient global state, so any two runs with the same seed sample identically.
type RNG interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
