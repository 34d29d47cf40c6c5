package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"goclean/ports"
)

// source hands out deterministic random streams, one per named operation.
// The stream seed mixes the operation name into the session seed so distinct
// operations get independent but reproducible streams.
type source struct{}

// NewSource creates the default RNG source.
func NewSource() ports.RNG {
	return &source{}
}

// SeededStream creates a deterministic random number generator for a named
// operation.
func (s *source) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed)), nil
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
