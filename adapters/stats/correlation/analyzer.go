package correlation

import (
	"sync"

	"goclean/domain/core"
	"goclean/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// bookkeeping columns are never treated as conditioning attributes.
var bookkeepingAttrs = map[string]struct{}{
	"index": {},
	"_tid_": {},
}

// cacheKey identifies one correlated-attributes query.
type cacheKey struct {
	Attr      string
	Threshold float64
}

// Analyzer holds the symmetric attribute-by-attribute Pearson correlation
// matrix for one session. Values are treated as discrete categories and
// encoded as integer codes before correlating; attributes without variation
// are dropped. The matrix is immutable after construction; queries are safe
// for concurrent use.
type Analyzer struct {
	attrs  []string
	matrix map[string]map[string]float64

	mu    sync.RWMutex
	cache map[cacheKey][]string
}

// NewAnalyzer computes the correlation matrix over the dataset's attributes.
func NewAnalyzer(ds *dataset.Dataset) *Analyzer {
	encoded := encodeCategories(ds)

	// Drop attributes with a single category: they carry no signal and their
	// zero variance would poison Pearson.
	attrs := make([]string, 0, len(encoded))
	for _, attr := range ds.Attributes() {
		col, ok := encoded[attr]
		if ok && hasVariation(col) {
			attrs = append(attrs, attr)
		}
	}

	matrix := make(map[string]map[string]float64, len(attrs))
	for _, a1 := range attrs {
		matrix[a1] = make(map[string]float64, len(attrs))
		for _, a2 := range attrs {
			if a1 == a2 {
				matrix[a1][a2] = 1.0
				continue
			}
			matrix[a1][a2] = stat.Correlation(encoded[a1], encoded[a2], nil)
		}
	}

	return &Analyzer{
		attrs:  attrs,
		matrix: matrix,
		cache:  make(map[cacheKey][]string),
	}
}

// Coefficient returns the signed correlation between two attributes and
// whether both survived constant-column dropping.
func (a *Analyzer) Coefficient(attr1, attr2 string) (float64, bool) {
	row, ok := a.matrix[attr1]
	if !ok {
		return 0, false
	}
	coeff, ok := row[attr2]
	return coeff, ok
}

// CorrelatedAttributes returns the attributes whose absolute correlation with
// attr exceeds threshold, excluding attr itself and bookkeeping columns.
// Results are memoized per (attr, threshold) for the session and returned in
// attribute order.
func (a *Analyzer) CorrelatedAttributes(attr string, threshold float64) []string {
	key := cacheKey{Attr: attr, Threshold: threshold}
	a.mu.RLock()
	hit, ok := a.cache[key]
	a.mu.RUnlock()
	if ok {
		return hit
	}

	var out []string
	if row, ok := a.matrix[attr]; ok {
		for _, other := range a.attrs {
			if other == attr {
				continue
			}
			if _, bk := bookkeepingAttrs[other]; bk {
				continue
			}
			if abs(row[other]) > threshold {
				out = append(out, other)
			}
		}
	}
	a.mu.Lock()
	a.cache[key] = out
	a.mu.Unlock()
	return out
}

// FeatureChannels enumerates, once, every (attribute, conditioning attribute)
// pair that has any correlation signal at all and assigns each a stable
// feature-channel index. Used by the co-occurrence featurizer.
func (a *Analyzer) FeatureChannels() map[[2]string]int {
	channels := make(map[[2]string]int)
	idx := 0
	for _, attr := range a.attrs {
		for _, other := range a.CorrelatedAttributes(attr, 0) {
			channels[[2]string{attr, other}] = idx
			idx++
		}
	}
	return channels
}

// encodeCategories maps every attribute's values to integer category codes in
// first-appearance order, with the missing sentinel getting its own code.
func encodeCategories(ds *dataset.Dataset) map[string][]float64 {
	rows := ds.RowCount()
	encoded := make(map[string][]float64, ds.AttrCount())
	for _, attr := range ds.Attributes() {
		codes := make(map[string]float64)
		col := make([]float64, rows)
		for tid := 0; tid < rows; tid++ {
			v := ds.Value(core.TID(tid), attr)
			code, seen := codes[v]
			if !seen {
				code = float64(len(codes))
				codes[v] = code
			}
			col[tid] = code
		}
		encoded[attr] = col
	}
	return encoded
}

func hasVariation(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
