package app

import (
	"context"
	"time"

	"goclean/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// FeatureTensor loads the persisted domain batch and assembles the combined
// per-session co-occurrence tensor in vid order. Valid only after Setup; the
// tensor is computed from the same statistics the domains were generated
// from.
func (s *DomainService) FeatureTensor(ctx context.Context) (*mat.Dense, error) {
	featurizer, err := s.Featurizer()
	if err != nil {
		return nil, err
	}

	tic := time.Now()
	records, err := s.repo.All(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load persisted domains")
	}

	tensor, err := featurizer.CreateTensor(records)
	if err != nil {
		return nil, err
	}
	rows, cols := tensor.Dims()
	s.log.Debug("assembled feature tensor: %d rows x %d channels", rows, cols)
	s.log.Timed("featurization", tic)
	return tensor, nil
}
