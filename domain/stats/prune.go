package stats

import (
	"math"
	"sort"

	"goclean/domain/core"
)

// massTolerance bounds how far the conditional probabilities for one
// conditioning value may drift from summing to exactly 1.
const massTolerance = 1e-6

// Candidate is one co-occurring value with its conditional probability given
// the conditioning value.
type Candidate struct {
	Value       string
	Probability float64
}

// RankedPairStats maps attribute1 -> attribute2 -> value1 -> candidates sorted
// by conditional probability, descending.
type RankedPairStats map[string]map[string]map[string][]Candidate

// PrunedPairStats maps attribute1 -> attribute2 -> value1 -> the ordered list
// of top co-occurring values, truncated by cumulative probability mass.
type PrunedPairStats map[string]map[string]map[string][]string

// Lookup returns the pruned candidate list for (attr1, attr2, val1) and
// whether val1 has an entry at all.
func (p PrunedPairStats) Lookup(attr1, attr2, val1 string) ([]string, bool) {
	vals, ok := p[attr1][attr2][val1]
	return vals, ok
}

// PairEmpty reports whether the pruned map for (attr1, attr2) holds no
// conditioning values at all.
func (p PrunedPairStats) PairEmpty(attr1, attr2 string) bool {
	return len(p[attr1][attr2]) == 0
}

// Prune converts raw pairwise joint frequencies into ranked and pruned
// candidate lists. For every (attr1, attr2, val1) the candidates are the
// observed value2's ranked by conditional probability
// count(val1, val2) / count(val1); the pruned list is the shortest prefix of
// that ranking whose accumulated mass exceeds topPercentile, inclusive of the
// crossing candidate.
//
// Ties in probability keep lexicographic value order, so the ranking is fully
// deterministic.
//
// The conditional probabilities for each val1 must sum to 1 within tolerance;
// a violation means the input statistics are corrupted and is fatal.
func Prune(pair PairStats, single SingleStats, topPercentile float64) (PrunedPairStats, RankedPairStats, error) {
	pruned := make(PrunedPairStats, len(pair))
	ranked := make(RankedPairStats, len(pair))
	for attr1, byAttr2 := range pair {
		pruned[attr1] = make(map[string]map[string][]string, len(byAttr2))
		ranked[attr1] = make(map[string]map[string][]Candidate, len(byAttr2))
		for attr2, byVal1 := range byAttr2 {
			pruned[attr1][attr2] = make(map[string][]string, len(byVal1))
			ranked[attr1][attr2] = make(map[string][]Candidate, len(byVal1))
			for val1, counts := range byVal1 {
				denom := float64(single.Count(attr1, val1))
				cands := rankCandidates(counts, denom)

				mass := 0.0
				for _, c := range cands {
					mass += c.Probability
				}
				if math.Abs(mass-1.0) >= massTolerance {
					return nil, nil, core.NewCorruptStatisticsError(attr1, attr2, val1, mass)
				}

				ranked[attr1][attr2][val1] = cands
				pruned[attr1][attr2][val1] = takeTopMass(cands, topPercentile)
			}
		}
	}
	return pruned, ranked, nil
}

// rankCandidates turns a value2 -> count map into candidates sorted by
// probability descending, ties in lexicographic value order.
func rankCandidates(counts map[string]int, denom float64) []Candidate {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	cands := make([]Candidate, len(values))
	for i, v := range values {
		cands[i] = Candidate{Value: v, Probability: float64(counts[v]) / denom}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Probability > cands[j].Probability
	})
	return cands
}

// takeTopMass walks the ranked candidates and keeps them until the
// accumulated mass already exceeds topPercentile. The candidate that crosses
// the cutoff is kept; the overshoot is intended.
func takeTopMass(cands []Candidate, topPercentile float64) []string {
	mass := 0.0
	kept := make([]string, 0, len(cands))
	for _, c := range cands {
		if mass > topPercentile {
			break
		}
		kept = append(kept, c.Value)
		mass += c.Probability
	}
	return kept
}
