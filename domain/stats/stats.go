package stats

import (
	"goclean/domain/core"
	"goclean/domain/dataset"
)

// SingleStats maps attribute -> value -> observed frequency over the whole
// dataset. The missing sentinel counts as its own value.
type SingleStats map[string]map[string]int

// PairStats maps attribute1 -> attribute2 -> value1 -> value2 -> joint
// frequency, for every value1 that co-occurred with at least one value2.
// For a fixed (attribute1, attribute2, value1) the value2 counts sum to
// SingleStats[attribute1][value1].
type PairStats map[string]map[string]map[string]map[string]int

// Count returns the frequency of val for attr, 0 when never observed.
func (s SingleStats) Count(attr, val string) int {
	return s[attr][val]
}

// Values returns how many distinct values were observed for attr.
func (s SingleStats) Values(attr string) int {
	return len(s[attr])
}

// CoCounts returns the value2 -> count map for (attr1, attr2, val1), nil when
// val1 was never observed.
func (p PairStats) CoCounts(attr1, attr2, val1 string) map[string]int {
	return p[attr1][attr2][val1]
}

// Collect computes the raw frequency statistics for one cleaning session: the
// total tuple count, per-attribute value frequencies, and pairwise joint
// frequencies for every ordered attribute pair. Computed once and read-only
// afterwards.
func Collect(ds *dataset.Dataset) (int, SingleStats, PairStats) {
	attrs := ds.Attributes()
	single := make(SingleStats, len(attrs))
	pair := make(PairStats, len(attrs))
	for _, a1 := range attrs {
		single[a1] = make(map[string]int)
		pair[a1] = make(map[string]map[string]map[string]int, len(attrs)-1)
		for _, a2 := range attrs {
			if a2 == a1 {
				continue
			}
			pair[a1][a2] = make(map[string]map[string]int)
		}
	}

	total := ds.RowCount()
	for tid := 0; tid < total; tid++ {
		row := ds.Row(core.TID(tid))
		for i, a1 := range attrs {
			v1 := row[i]
			single[a1][v1]++
			for j, a2 := range attrs {
				if j == i {
					continue
				}
				co := pair[a1][a2][v1]
				if co == nil {
					co = make(map[string]int)
					pair[a1][a2][v1] = co
				}
				co[row[j]]++
			}
		}
	}
	return total, single, pair
}
