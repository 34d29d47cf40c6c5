package estimator

import (
	"context"
	"testing"

	"goclean/domain/cell"
	"goclean/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cityDataset holds a strong city -> state dependency with one corrupted
// state cell in the last tuple.
func cityDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]string{"city", "state"})
	require.NoError(t, err)
	for _, row := range [][]string{
		{"austin", "tx"},
		{"austin", "tx"},
		{"austin", "tx"},
		{"boston", "ma"},
		{"boston", "ma"},
		{"austin", "ma"},
	} {
		require.NoError(t, ds.Append(row))
	}
	return ds
}

func corruptedCell() cell.DomainRecord {
	return cell.DomainRecord{
		TID:        5,
		VID:        0,
		Attribute:  "state",
		Domain:     []string{"ma", "tx"},
		DomainSize: 2,
		InitValue:  "ma",
		WeakLabel:  "ma",
	}
}

func TestFitRequiresDatasetAndRecords(t *testing.T) {
	e := NewNaiveBayes()
	ctx := context.Background()

	err := e.Fit(ctx, nil, nil, []cell.DomainRecord{corruptedCell()})
	assert.Error(t, err)

	err = e.Fit(ctx, cityDataset(t), []string{"state"}, nil)
	assert.Error(t, err)
}

func TestTrainRequiresFitAndPositiveArguments(t *testing.T) {
	e := NewNaiveBayes()
	ctx := context.Background()

	assert.Error(t, e.Train(ctx, 3, 32))

	require.NoError(t, e.Fit(ctx, cityDataset(t), []string{"state"}, []cell.DomainRecord{corruptedCell()}))
	assert.Error(t, e.Train(ctx, 0, 32))
	assert.Error(t, e.Train(ctx, 3, 0))
	assert.NoError(t, e.Train(ctx, 3, 32))
}

func TestPredictBatchNormalizesOverDomain(t *testing.T) {
	e := NewNaiveBayes()
	ctx := context.Background()
	require.NoError(t, e.Fit(ctx, cityDataset(t), []string{"state"}, []cell.DomainRecord{corruptedCell()}))
	require.NoError(t, e.Train(ctx, 1, 1))

	preds, err := e.PredictBatch(ctx)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	require.Len(t, preds[0], 2)

	var mass float64
	for _, p := range preds[0] {
		assert.Greater(t, p.Probability, 0.0)
		mass += p.Probability
	}
	assert.InDelta(t, 1.0, mass, 1e-9)
}

func TestPredictBatchFavorsCoOccurringValue(t *testing.T) {
	// Tuple 5 reads (austin, ma); austin overwhelmingly pairs with tx, so the
	// posterior should prefer tx over the observed ma.
	e := NewNaiveBayes()
	ctx := context.Background()
	require.NoError(t, e.Fit(ctx, cityDataset(t), []string{"state"}, []cell.DomainRecord{corruptedCell()}))

	preds, err := e.PredictBatch(ctx)
	require.NoError(t, err)

	byValue := make(map[string]float64, len(preds[0]))
	for _, p := range preds[0] {
		byValue[p.Value] = p.Probability
	}
	assert.Greater(t, byValue["tx"], byValue["ma"])
}

func TestPredictBatchSkipsMissingConditioningValues(t *testing.T) {
	ds, err := dataset.New([]string{"city", "state"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"", "tx"}))
	require.NoError(t, ds.Append([]string{"boston", "ma"}))

	rec := cell.DomainRecord{
		TID: 0, VID: 0, Attribute: "state",
		Domain: []string{"tx", "ma"}, DomainSize: 2,
		InitValue: "tx", WeakLabel: "tx",
	}

	e := NewNaiveBayes()
	ctx := context.Background()
	require.NoError(t, e.Fit(ctx, ds, []string{"state"}, []cell.DomainRecord{rec}))

	// With the city missing, only the value priors remain: tx and ma were each
	// observed once, so the posterior is uniform.
	preds, err := e.PredictBatch(ctx)
	require.NoError(t, err)
	require.Len(t, preds[0], 2)
	assert.InDelta(t, 0.5, preds[0][0].Probability, 1e-9)
	assert.InDelta(t, 0.5, preds[0][1].Probability, 1e-9)
}

func TestPredictBatchHonorsContextCancellation(t *testing.T) {
	e := NewNaiveBayes()
	require.NoError(t, e.Fit(context.Background(), cityDataset(t), []string{"state"}, []cell.DomainRecord{corruptedCell()}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.PredictBatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
