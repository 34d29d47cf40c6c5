package generation

import (
	"testing"

	"goclean/domain/cell"
	"goclean/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variableRecord(vid int, initValue string, domain ...string) cell.DomainRecord {
	idx := 0
	for i, v := range domain {
		if v == initValue {
			idx = i
		}
	}
	return cell.DomainRecord{
		VID:          core.VID(vid),
		Attribute:    "a",
		Domain:       domain,
		DomainSize:   len(domain),
		InitValue:    initValue,
		InitIndex:    idx,
		WeakLabel:    initValue,
		WeakLabelIdx: idx,
		Fixed:        cell.NotSet,
	}
}

func TestRefinerAssignsWeakLabelAboveThreshold(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.8, DomainThreshold: 0, MaxDomain: 10})
	records := []cell.DomainRecord{variableRecord(0, "n", "m", "n")}
	preds := [][]cell.ValueProbability{{
		{Value: "m", Probability: 0.85},
		{Value: "n", Probability: 0.15},
	}}

	weakLabels, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	assert.Equal(t, 1, weakLabels)
	assert.Equal(t, "m", records[0].WeakLabel)
	assert.Equal(t, cell.WeakLabel, records[0].Fixed)
	assert.Equal(t, records[0].Domain[records[0].WeakLabelIdx], "m")
	assert.NoError(t, records[0].Validate())
}

func TestRefinerKeepsInitValueWhenConfidenceLow(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.8, DomainThreshold: 0, MaxDomain: 10})
	records := []cell.DomainRecord{variableRecord(0, "n", "m", "n")}
	preds := [][]cell.ValueProbability{{
		{Value: "m", Probability: 0.7},
		{Value: "n", Probability: 0.3},
	}}

	weakLabels, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	assert.Equal(t, 0, weakLabels)
	assert.Equal(t, "n", records[0].WeakLabel)
	assert.Equal(t, cell.NotSet, records[0].Fixed)
}

func TestRefinerFiltersLowConfidenceCandidates(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.99, DomainThreshold: 0.2, MaxDomain: 10})
	records := []cell.DomainRecord{variableRecord(0, "x", "x", "y", "z")}
	preds := [][]cell.ValueProbability{{
		{Value: "x", Probability: 0.5},
		{Value: "y", Probability: 0.4},
		{Value: "z", Probability: 0.1},
	}}

	_, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, records[0].Domain)
	assert.Equal(t, 2, records[0].DomainSize)
	assert.NoError(t, records[0].Validate())
}

func TestRefinerFallsBackToUnfilteredWhenAllBelowThreshold(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.99, DomainThreshold: 0.9, MaxDomain: 10})
	records := []cell.DomainRecord{variableRecord(0, "x", "x", "y")}
	preds := [][]cell.ValueProbability{{
		{Value: "x", Probability: 0.6},
		{Value: "y", Probability: 0.4},
	}}

	_, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	// Filtering would empty the domain; the unfiltered list is kept instead.
	assert.Equal(t, 2, records[0].DomainSize)
	assert.Contains(t, records[0].Domain, "x")
	assert.Contains(t, records[0].Domain, "y")
}

func TestRefinerCapsDomainAndReappendsInitValue(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.99, DomainThreshold: 0, MaxDomain: 2})
	records := []cell.DomainRecord{variableRecord(0, "w", "x", "y", "z", "w")}
	preds := [][]cell.ValueProbability{{
		{Value: "x", Probability: 0.5},
		{Value: "y", Probability: 0.3},
		{Value: "z", Probability: 0.15},
		{Value: "w", Probability: 0.05},
	}}

	_, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	// Cap keeps the top 2, then init is re-appended as a hard invariant.
	assert.Equal(t, []string{"x", "y", "w"}, records[0].Domain)
	assert.Equal(t, 3, records[0].DomainSize)
	assert.Equal(t, 2, records[0].InitIndex)
	assert.NoError(t, records[0].Validate())
}

func TestRefinerPassesThroughSingleValueCells(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.5, DomainThreshold: 0.5, MaxDomain: 1})
	rec := variableRecord(0, "w", "w", "x")
	rec.Fixed = cell.SingleValue
	records := []cell.DomainRecord{rec}
	preds := [][]cell.ValueProbability{nil}

	weakLabels, err := refiner.Refine(records, preds)
	require.NoError(t, err)

	assert.Equal(t, 0, weakLabels)
	assert.Equal(t, rec, records[0])
}

func TestRefinerSkipWhenNoRefinementRequested(t *testing.T) {
	assert.True(t, NewRefiner(Config{WeakLabelThreshold: 1, DomainThreshold: 0}).Skip())
	assert.False(t, NewRefiner(Config{WeakLabelThreshold: 1, DomainThreshold: 0.1}).Skip())
	assert.False(t, NewRefiner(Config{WeakLabelThreshold: 0.9, DomainThreshold: 0}).Skip())
}

func TestRefinerRejectsMismatchedPredictionCount(t *testing.T) {
	refiner := NewRefiner(Config{WeakLabelThreshold: 0.9, DomainThreshold: 0, MaxDomain: 10})
	records := []cell.DomainRecord{variableRecord(0, "x", "x", "y")}

	_, err := refiner.Refine(records, nil)
	assert.Error(t, err)
}
