package core

import (
	"errors"
	"fmt"
)

// Engine precondition errors - all of these abort the session, no retry
var (
	// ErrNoActiveAttributes means the error detector flagged no attribute as
	// potentially erroneous, so there is nothing to clean.
	ErrNoActiveAttributes = errors.New("no attribute contains erroneous cells")

	// ErrCorruptStatistics means conditional co-occurrence probabilities for
	// some (attribute, value) did not sum to 1 within tolerance.
	ErrCorruptStatistics = errors.New("corrupted co-occurrence statistics")

	// ErrMissingPairStat means a non-missing observed value was absent from the
	// pairwise statistics, which every observed value must appear in.
	ErrMissingPairStat = errors.New("value missing from pairwise statistics")

	// ErrEmptyDomain means the generated domain table came out empty.
	ErrEmptyDomain = errors.New("generated domain is empty")

	// ErrNotSetup means statistics setup was not run before domain generation.
	ErrNotSetup = errors.New("statistics setup has not been performed")
)

// NewCorruptStatisticsError reports a probability-mass violation for one
// conditioning value.
func NewCorruptStatisticsError(attr1, attr2, val1 string, mass float64) error {
	return fmt.Errorf("%w: mass for (%s, %s, %q) sums to %v, want 1", ErrCorruptStatistics, attr1, attr2, val1, mass)
}

// NewMissingPairStatError reports an observed value that never made it into
// the pairwise statistics maps.
func NewMissingPairStatError(attr, val string) error {
	return fmt.Errorf("%w: attribute %s value %q", ErrMissingPairStat, attr, val)
}

// IsFatal reports whether err is one of the session-aborting precondition
// failures.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoActiveAttributes) ||
		errors.Is(err, ErrCorruptStatistics) ||
		errors.Is(err, ErrMissingPairStat) ||
		errors.Is(err, ErrEmptyDomain)
}
