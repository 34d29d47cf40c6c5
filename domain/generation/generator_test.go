package generation

import (
	"context"
	"math/rand"
	"testing"

	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/domain/dataset"
	"goclean/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corrStub serves a fixed correlated-attribute list per attribute.
type corrStub map[string][]string

func (c corrStub) CorrelatedAttributes(attr string, threshold float64) []string {
	return c[attr]
}

func testConfig() Config {
	return Config{
		CorrelationStrength: 0.05,
		MaxSample:           5,
		DomainThreshold:     0,
		WeakLabelThreshold:  0.9,
		MaxDomain:           10,
	}
}

func newTestGenerator(t *testing.T, ds *dataset.Dataset, corr corrStub, single stats.SingleStats, pruned stats.PrunedPairStats) *Generator {
	t.Helper()
	return NewGenerator(ds, corr, single, pruned, testConfig(), rand.New(rand.NewSource(7)))
}

func TestCellDomainUnionsCorrelatedCandidates(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1", "c2"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p", "q"}))

	corr := corrStub{"a": {"c1", "c2"}}
	pruned := stats.PrunedPairStats{
		"c1": {"a": {"p": {"x", "y"}}},
		"c2": {"a": {"q": {"y", "z"}}},
	}
	single := stats.SingleStats{"a": {"w": 1}}

	gen := newTestGenerator(t, ds, corr, single, pruned)
	initValue, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)

	assert.Equal(t, "w", initValue)
	assert.ElementsMatch(t, []string{"x", "y", "z", "w"}, dom)
}

func TestCellDomainScenarioSingleConditioningValue(t *testing.T) {
	// Conditioning value "p" contributes {"x","y"}; current value "w" is
	// always added.
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p"}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {"w": 1}},
		stats.PrunedPairStats{"c1": {"a": {"p": {"x", "y"}, "q": {"y", "z"}}}},
	)
	initValue, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)

	assert.Equal(t, "w", initValue)
	assert.ElementsMatch(t, []string{"x", "y", "w"}, dom)
}

func TestCellDomainSkipsMissingConditioningValue(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", ""}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {"w": 1}},
		stats.PrunedPairStats{"c1": {"a": {"p": {"x"}}}},
	)
	_, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, dom)
}

func TestCellDomainShortCircuitsOnEmptyPrunedPair(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1", "c2"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p", "q"}))

	// c1's pruned map for a is empty: the walk stops before ever reaching c2.
	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1", "c2"}},
		stats.SingleStats{"a": {"w": 1}},
		stats.PrunedPairStats{
			"c1": {"a": {}},
			"c2": {"a": {"q": {"z"}}},
		},
	)
	_, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, dom)
}

func TestCellDomainMissingConditioningKeyIsFatal(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p"}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {"w": 1}},
		stats.PrunedPairStats{"c1": {"a": {"other": {"x"}}}},
	)
	_, _, err = gen.CellDomain(0, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingPairStat)
}

func TestCellDomainToleratesMissingKeyWhenOwnValueMissing(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"", "p"}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {}},
		stats.PrunedPairStats{"c1": {"a": {"other": {"x"}}}},
	)
	initValue, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)
	assert.Equal(t, dataset.MissingValue, initValue)
	assert.Equal(t, []string{dataset.MissingValue}, dom)
}

func TestCellDomainDiscardsMissingSentinelCandidate(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p"}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {"w": 1}},
		stats.PrunedPairStats{"c1": {"a": {"p": {"x", dataset.MissingValue}}}},
	)
	_, dom, err := gen.CellDomain(0, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "w"}, dom)
}

func TestGenerateAssignsDenseVIDs(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p"}))
	require.NoError(t, ds.Append([]string{"x", "p"}))
	require.NoError(t, ds.Append([]string{"y", "q"}))

	gen := newTestGenerator(t, ds,
		corrStub{"a": {"c1"}},
		stats.SingleStats{"a": {"w": 1, "x": 1, "y": 1}},
		stats.PrunedPairStats{"c1": {"a": {"p": {"x", "y"}, "q": {"x"}}}},
	)
	records, err := gen.Generate(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, rec := range records {
		assert.Equal(t, core.VID(i), rec.VID)
		assert.Equal(t, core.TID(i), rec.TID)
		assert.NoError(t, rec.Validate())
		assert.Contains(t, rec.Domain, rec.InitValue)
	}
}

func TestGenerateRandomFallbackPadsSingleValueDomains(t *testing.T) {
	ds, err := dataset.New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w"}))

	// No correlated attributes at all: the domain starts as just the init
	// value and gets padded from the observed value pool.
	gen := newTestGenerator(t, ds,
		corrStub{},
		stats.SingleStats{"a": {"w": 5, "x": 3, "y": 2, "z": 1}},
		stats.PrunedPairStats{},
	)
	records, err := gen.Generate(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, cell.SingleValue, rec.Fixed)
	assert.Equal(t, "w", rec.InitValue)
	assert.Equal(t, 4, rec.DomainSize) // init + all three alternatives
	assert.NotContains(t, rec.Domain[1:], "w")
}

func TestGenerateDropsCellsWithNoAlternativeValues(t *testing.T) {
	ds, err := dataset.New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w"}))
	require.NoError(t, ds.Append([]string{"w"}))

	gen := newTestGenerator(t, ds,
		corrStub{},
		stats.SingleStats{"a": {"w": 2}},
		stats.PrunedPairStats{},
	)
	records, err := gen.Generate(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateRequiresActiveAttributes(t *testing.T) {
	ds, err := dataset.New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w"}))

	gen := newTestGenerator(t, ds, corrStub{}, stats.SingleStats{"a": {"w": 1}}, stats.PrunedPairStats{})
	_, err = gen.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrNoActiveAttributes)
}

func TestGenerateRequiresSetup(t *testing.T) {
	ds, err := dataset.New([]string{"a"})
	require.NoError(t, err)

	gen := NewGenerator(ds, corrStub{}, nil, nil, testConfig(), rand.New(rand.NewSource(1)))
	_, err = gen.Generate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, core.ErrNotSetup)
}

func TestGenerateIsDeterministicUnderFixedSeed(t *testing.T) {
	ds, err := dataset.New([]string{"a", "c1"})
	require.NoError(t, err)
	require.NoError(t, ds.Append([]string{"w", "p"}))
	require.NoError(t, ds.Append([]string{"u", ""}))

	single := stats.SingleStats{"a": {"w": 1, "u": 1, "x": 2, "y": 1, "z": 1}}
	pruned := stats.PrunedPairStats{"c1": {"a": {"p": {"x", "y"}}}}
	corr := corrStub{"a": {"c1"}}

	run := func() []cell.DomainRecord {
		gen := NewGenerator(ds, corr, single, pruned, testConfig(), rand.New(rand.NewSource(42)))
		records, err := gen.Generate(context.Background(), []string{"a"})
		require.NoError(t, err)
		return records
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}
