package generation

import (
	"fmt"
	"sort"

	"goclean/domain/cell"
)

// Refiner re-prunes initial domains with externally computed posterior
// probabilities, caps their size, and asserts weak labels for
// high-confidence cells.
type Refiner struct {
	cfg Config
}

// NewRefiner creates a refiner with the session thresholds.
func NewRefiner(cfg Config) *Refiner {
	return &Refiner{cfg: cfg}
}

// Skip reports whether the configured thresholds mean "no refinement
// requested": a weak-label threshold of 1 with a domain threshold of 0 leaves
// every initial domain unchanged, so the estimator stage is skipped entirely.
func (r *Refiner) Skip() bool {
	return r.cfg.WeakLabelThreshold == 1 && r.cfg.DomainThreshold == 0
}

// Refine mutates the record batch in place given one prediction list per
// variable cell in vid order, and returns how many weak labels were
// assigned. Cells padded by random sampling pass through unchanged.
func (r *Refiner) Refine(records []cell.DomainRecord, preds [][]cell.ValueProbability) (int, error) {
	if len(preds) != len(records) {
		return 0, fmt.Errorf("got %d prediction lists for %d variable cells", len(preds), len(records))
	}

	weakLabels := 0
	for i := range records {
		rec := &records[i]
		if rec.Fixed == cell.SingleValue {
			continue
		}
		if len(preds[i]) == 0 {
			return weakLabels, fmt.Errorf("empty prediction list for vid=%d", rec.VID)
		}

		// Drop low-confidence candidates, but never all of them: an empty
		// filtered list falls back to the unfiltered one.
		kept := filterByThreshold(preds[i], r.cfg.DomainThreshold)
		if len(kept) == 0 {
			kept = preds[i]
		}

		// Cap the domain at MaxDomain, highest probability first.
		kept = sortByProbability(kept)
		if len(kept) > r.cfg.MaxDomain {
			kept = kept[:r.cfg.MaxDomain]
		}
		domain := make([]string, len(kept))
		for j, vp := range kept {
			domain[j] = vp.Value
		}

		// Keeping the initial value is a hard invariant; the cap becomes a
		// soft bound when it has to be re-appended.
		if indexOf(domain, rec.InitValue) < 0 {
			domain = append(domain, rec.InitValue)
		}

		rec.Domain = domain
		rec.DomainSize = len(domain)
		rec.InitIndex = indexOf(domain, rec.InitValue)
		if idx := indexOf(domain, rec.WeakLabel); idx >= 0 {
			rec.WeakLabelIdx = idx
		} else {
			rec.WeakLabel = rec.InitValue
			rec.WeakLabelIdx = rec.InitIndex
		}

		// The weak label comes from the argmax over the unfiltered
		// predictions, not the capped domain.
		best := argmax(preds[i])
		if best.Probability >= r.cfg.WeakLabelThreshold {
			rec.WeakLabel = best.Value
			rec.WeakLabelIdx = indexOf(domain, best.Value)
			rec.Fixed = cell.WeakLabel
			weakLabels++
		}
	}
	return weakLabels, nil
}

func filterByThreshold(preds []cell.ValueProbability, threshold float64) []cell.ValueProbability {
	var kept []cell.ValueProbability
	for _, vp := range preds {
		if vp.Probability >= threshold {
			kept = append(kept, vp)
		}
	}
	return kept
}

func sortByProbability(preds []cell.ValueProbability) []cell.ValueProbability {
	out := append([]cell.ValueProbability(nil), preds...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

func argmax(preds []cell.ValueProbability) cell.ValueProbability {
	best := preds[0]
	for _, vp := range preds[1:] {
		if vp.Probability > best.Probability {
			best = vp
		}
	}
	return best
}
