package ports

import (
	"context"

	"goclean/domain/cell"
	"goclean/domain/dataset"
)

// Estimator is the external posterior-probability oracle. Fit receives the
// session dataset, the active attributes, and the initial domain batch;
// PredictBatch returns one (value, probability) list per variable cell in vid
// order, with probabilities summing to 1 over each cell's initial domain.
type Estimator interface {
	Fit(ctx context.Context, ds *dataset.Dataset, activeAttrs []string, records []cell.DomainRecord) error
	Train(ctx context.Context, epochs, batchSize int) error
	PredictBatch(ctx context.Context) ([][]cell.ValueProbability, error)
}
