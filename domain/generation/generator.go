package generation

import (
	"context"
	"math/rand"
	"runtime"
	"sort"

	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/domain/dataset"
	"goclean/domain/stats"

	"golang.org/x/sync/errgroup"
)

// CorrelationSource answers which attributes are correlated with a given
// attribute above a threshold.
type CorrelationSource interface {
	CorrelatedAttributes(attr string, threshold float64) []string
}

// Config carries the session parameters that shape domain generation.
type Config struct {
	// CorrelationStrength is the minimum absolute correlation a conditioning
	// attribute needs before its co-occurrence candidates are considered.
	CorrelationStrength float64
	// MaxSample caps how many values the random fallback draws for a cell
	// with no correlation signal.
	MaxSample int
	// DomainThreshold drops posterior candidates below this confidence.
	DomainThreshold float64
	// WeakLabelThreshold is the posterior confidence above which a weak label
	// is asserted.
	WeakLabelThreshold float64
	// MaxDomain caps the refined domain size.
	MaxDomain int
}

// Generator produces the candidate domain for every active cell. The
// statistics structures are read-only for its whole lifetime; the random
// source is injected so runs are reproducible under a fixed seed.
type Generator struct {
	ds     *dataset.Dataset
	corr   CorrelationSource
	single stats.SingleStats
	pruned stats.PrunedPairStats
	cfg    Config
	rng    *rand.Rand
}

// NewGenerator creates a generator over prepared session statistics.
func NewGenerator(ds *dataset.Dataset, corr CorrelationSource, single stats.SingleStats, pruned stats.PrunedPairStats, cfg Config, rng *rand.Rand) *Generator {
	return &Generator{
		ds:     ds,
		corr:   corr,
		single: single,
		pruned: pruned,
		cfg:    cfg,
		rng:    rng,
	}
}

// cellDomain is the outcome of the per-cell candidate pass, before vid
// assignment and random padding.
type cellDomain struct {
	initValue string
	values    []string
}

// Generate runs the batch pass over every (tuple, active attribute) cell and
// returns the initial DomainRecord batch. Candidate computation is
// data-parallel over tuples; vid assignment and random-fallback sampling run
// as a sequential finalization step so the batch is byte-identical across
// runs with the same seed.
func (g *Generator) Generate(ctx context.Context, activeAttrs []string) ([]cell.DomainRecord, error) {
	if g.single == nil || g.pruned == nil {
		return nil, core.ErrNotSetup
	}
	if len(activeAttrs) == 0 {
		return nil, core.ErrNoActiveAttributes
	}
	ordered := g.orderAttributes(activeAttrs)

	rows := g.ds.RowCount()
	domains := make([][]cellDomain, rows)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for tid := 0; tid < rows; tid++ {
		tid := tid
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perAttr := make([]cellDomain, len(ordered))
			for i, attr := range ordered {
				initValue, dom, err := g.CellDomain(core.TID(tid), attr)
				if err != nil {
					return err
				}
				perAttr[i] = cellDomain{initValue: initValue, values: dom}
			}
			domains[tid] = perAttr
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return g.finalize(ordered, domains), nil
}

// finalize walks the per-cell domains in deterministic order, pads
// single-value cells via random sampling, and assigns dense vids. Cells whose
// attribute has no alternative values at all are dropped from the variable
// set.
func (g *Generator) finalize(ordered []string, domains [][]cellDomain) []cell.DomainRecord {
	attrCount := g.ds.AttrCount()
	var records []cell.DomainRecord
	vid := core.VID(0)
	for tid := range domains {
		for i, attr := range ordered {
			cd := domains[tid][i]
			dom := cd.values
			fixed := cell.NotSet
			if len(dom) <= 1 {
				padding := g.randomDomain(attr, cd.initValue)
				if len(padding) == 0 {
					// Attribute has a single observed value; not a variable.
					continue
				}
				dom = append(dom, padding...)
				fixed = cell.SingleValue
			}
			attrIdx, _ := g.ds.AttrIndex(attr)
			initIdx := indexOf(dom, cd.initValue)
			records = append(records, cell.DomainRecord{
				TID:          core.TID(tid),
				CID:          core.CellID(core.TID(tid), attrIdx, attrCount),
				VID:          vid,
				Attribute:    attr,
				Domain:       dom,
				DomainSize:   len(dom),
				InitValue:    cd.initValue,
				InitIndex:    initIdx,
				WeakLabel:    cd.initValue,
				WeakLabelIdx: initIdx,
				Fixed:        fixed,
			})
			vid++
		}
	}
	return records
}

// CellDomain builds the candidate domain for one cell by unioning the pruned
// co-occurrence candidates of every sufficiently correlated conditioning
// attribute, then adding the cell's current value. The returned list is
// insertion-ordered and duplicate-free.
//
// Two policies apply while walking conditioning attributes:
//   - an entirely empty pruned map for (cond, attr) short-circuits the walk;
//   - a conditioning value absent from the pruned map is fatal unless the
//     cell's own value is missing, in which case it is tolerated silently.
func (g *Generator) CellDomain(tid core.TID, attr string) (string, []string, error) {
	initValue := g.ds.Value(tid, attr)

	var dom []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			dom = append(dom, v)
		}
	}

	for _, cond := range g.corr.CorrelatedAttributes(attr, g.cfg.CorrelationStrength) {
		if cond == attr {
			continue
		}
		condVal := g.ds.Value(tid, cond)
		if dataset.IsMissing(condVal) {
			continue
		}
		if g.pruned.PairEmpty(cond, attr) {
			break
		}
		candidates, ok := g.pruned.Lookup(cond, attr, condVal)
		if !ok {
			if !dataset.IsMissing(initValue) {
				// Co-occurrence must be at least 1 since this row itself
				// counts as one.
				return "", nil, core.NewMissingPairStatError(cond, condVal)
			}
			continue
		}
		for _, c := range candidates {
			add(c)
		}
	}

	// The missing sentinel is a statistics artifact, not a correction.
	dom = discard(dom, seen, dataset.MissingValue)

	add(initValue)
	return initValue, dom, nil
}

// randomDomain samples up to MaxSample observed values for attr, excluding
// curValue, uniformly without replacement. An empty result means the
// attribute has no alternative values.
func (g *Generator) randomDomain(attr, curValue string) []string {
	pool := make([]string, 0, len(g.single[attr]))
	for v := range g.single[attr] {
		if v != curValue {
			pool = append(pool, v)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	sort.Strings(pool)
	g.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	k := g.cfg.MaxSample
	if k > len(pool) {
		k = len(pool)
	}
	return pool[:k]
}

// orderAttributes filters the active set down to known attributes and orders
// it by dataset attribute position, the documented iteration order.
func (g *Generator) orderAttributes(activeAttrs []string) []string {
	active := make(map[string]struct{}, len(activeAttrs))
	for _, a := range activeAttrs {
		active[a] = struct{}{}
	}
	var ordered []string
	for _, attr := range g.ds.Attributes() {
		if _, ok := active[attr]; ok {
			ordered = append(ordered, attr)
		}
	}
	return ordered
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func discard(dom []string, seen map[string]struct{}, val string) []string {
	if _, ok := seen[val]; !ok {
		return dom
	}
	delete(seen, val)
	out := dom[:0]
	for _, v := range dom {
		if v != val {
			out = append(out, v)
		}
	}
	return out
}
