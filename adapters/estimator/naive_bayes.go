package estimator

import (
	"context"
	"fmt"

	"goclean/domain/cell"
	"goclean/domain/dataset"
	"goclean/domain/stats"
	"goclean/internal"
)

// smoothing keeps unseen co-occurrences from zeroing a whole posterior.
const smoothing = 1e-6

// NaiveBayes is a reference posterior estimator: it scores each candidate in
// a cell's initial domain by its value prior times the smoothed conditional
// likelihood of the tuple's other observed values, then normalizes over the
// domain. It exists so the refiner has a working oracle; heavier trained
// estimators plug in behind the same port.
type NaiveBayes struct {
	total  float64
	single stats.SingleStats
	pair   stats.PairStats

	ds      *dataset.Dataset
	records []cell.DomainRecord
	fitted  bool
}

// NewNaiveBayes creates an unfitted estimator.
func NewNaiveBayes() *NaiveBayes {
	return &NaiveBayes{}
}

// Fit binds the estimator to the session dataset and the initial domain
// batch, and collects the frequency statistics it scores with.
func (e *NaiveBayes) Fit(ctx context.Context, ds *dataset.Dataset, activeAttrs []string, records []cell.DomainRecord) error {
	if ds == nil || len(records) == 0 {
		return fmt.Errorf("estimator requires a dataset and a non-empty domain batch")
	}
	total, single, pair := stats.Collect(ds)
	e.total = float64(total)
	e.single = single
	e.pair = pair
	e.ds = ds
	e.records = records
	e.fitted = true
	return nil
}

// Train is a bounded no-op for this estimator: the frequency statistics are
// already the model. The signature matches the external-estimator contract.
func (e *NaiveBayes) Train(ctx context.Context, epochs, batchSize int) error {
	if !e.fitted {
		return fmt.Errorf("estimator is not fitted")
	}
	if epochs <= 0 || batchSize <= 0 {
		return fmt.Errorf("epochs and batch size must be positive")
	}
	internal.DefaultLogger.Debug("naive bayes estimator ready (epochs=%d batch_size=%d ignored)", epochs, batchSize)
	return nil
}

// PredictBatch returns one (value, probability) list per variable cell in vid
// order. Probabilities sum to 1 over each cell's initial domain.
func (e *NaiveBayes) PredictBatch(ctx context.Context) ([][]cell.ValueProbability, error) {
	if !e.fitted {
		return nil, fmt.Errorf("estimator is not fitted")
	}
	preds := make([][]cell.ValueProbability, len(e.records))
	for i := range e.records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		preds[i] = e.predictCell(&e.records[i])
	}
	return preds, nil
}

// predictCell scores every candidate in the record's domain.
func (e *NaiveBayes) predictCell(r *cell.DomainRecord) []cell.ValueProbability {
	row := e.ds.Row(r.TID)
	attrs := e.ds.Attributes()

	scores := make([]float64, len(r.Domain))
	var mass float64
	for i, candidate := range r.Domain {
		count := float64(e.single.Count(r.Attribute, candidate))
		score := (count + smoothing) / e.total
		for j, other := range attrs {
			if other == r.Attribute {
				continue
			}
			otherVal := row[j]
			if dataset.IsMissing(otherVal) {
				continue
			}
			co := float64(e.pair.CoCounts(r.Attribute, other, candidate)[otherVal])
			score *= (co + smoothing) / (count + smoothing)
		}
		scores[i] = score
		mass += score
	}

	preds := make([]cell.ValueProbability, len(r.Domain))
	for i, candidate := range r.Domain {
		preds[i] = cell.ValueProbability{Value: candidate, Probability: scores[i] / mass}
	}
	return preds
}
