package generation

import (
	"fmt"
	"sort"

	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/domain/dataset"
	"goclean/domain/stats"

	"gonum.org/v1/gonum/mat"
)

// Featurizer converts finalized cell domains into dense co-occurrence feature
// tensors: one feature channel per correlated (attribute, conditioning
// attribute) pair, one row per candidate domain value. Channels are
// enumerated once at setup with stable indexes.
type Featurizer struct {
	ds       *dataset.Dataset
	single   stats.SingleStats
	pair     stats.PairStats
	channels map[[2]string]int
}

// NewFeaturizer creates a featurizer over the session statistics and the
// pre-enumerated feature channels.
func NewFeaturizer(ds *dataset.Dataset, single stats.SingleStats, pair stats.PairStats, channels map[[2]string]int) *Featurizer {
	return &Featurizer{
		ds:       ds,
		single:   single,
		pair:     pair,
		channels: channels,
	}
}

// NumChannels returns the number of feature channels.
func (f *Featurizer) NumChannels() int {
	return len(f.channels)
}

// ChannelNames returns one "attr1 X attr2" name per channel, in channel-index
// order.
func (f *Featurizer) ChannelNames() []string {
	pairs := make([][2]string, 0, len(f.channels))
	for p := range f.channels {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return f.channels[pairs[i]] < f.channels[pairs[j]] })
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = fmt.Sprintf("%s X %s", p[0], p[1])
	}
	return names
}

// CellTensor builds the (domain_size x channels) feature matrix for one
// record. Entry (i, c) is the probability of seeing domain value i in the
// record's attribute given the tuple's value for channel c's conditioning
// attribute.
func (f *Featurizer) CellTensor(r *cell.DomainRecord) (*mat.Dense, error) {
	tensor := mat.NewDense(len(r.Domain), len(f.channels), nil)

	rvAttr := r.Attribute
	domainIdx := make(map[string]int, len(r.Domain))
	for i, v := range r.Domain {
		domainIdx[v] = i
	}

	for _, attr := range f.ds.Attributes() {
		channel, ok := f.channels[[2]string{rvAttr, attr}]
		if !ok || attr == rvAttr {
			// Pair not correlated enough to carry a channel.
			continue
		}
		condVal := f.ds.Value(r.TID, attr)
		if dataset.IsMissing(condVal) {
			continue
		}
		count1 := float64(f.single.Count(attr, condVal))
		coCounts := f.pair.CoCounts(attr, rvAttr, condVal)
		if coCounts == nil {
			if !dataset.IsMissing(f.ds.Value(r.TID, rvAttr)) {
				return nil, core.NewMissingPairStatError(attr, condVal)
			}
			continue
		}

		// When fewer values ever co-occurred with condVal than the domain
		// holds, score just those; otherwise score every domain value, zero
		// counts included.
		if len(coCounts) <= len(r.Domain) {
			for val, count := range coCounts {
				if row, in := domainIdx[val]; in {
					tensor.Set(row, channel, float64(count)/count1)
				}
			}
		} else {
			for row, val := range r.Domain {
				tensor.Set(row, channel, float64(coCounts[val])/count1)
			}
		}
	}
	return tensor, nil
}

// CreateTensor assembles the combined per-session tensor by row-stacking
// every record's cell tensor in vid order.
func (f *Featurizer) CreateTensor(records []cell.DomainRecord) (*mat.Dense, error) {
	if len(f.channels) == 0 {
		return nil, fmt.Errorf("no feature channels enumerated")
	}
	totalRows := 0
	for i := range records {
		totalRows += len(records[i].Domain)
	}
	if totalRows == 0 {
		return nil, core.ErrEmptyDomain
	}

	combined := mat.NewDense(totalRows, len(f.channels), nil)
	offset := 0
	for i := range records {
		t, err := f.CellTensor(&records[i])
		if err != nil {
			return nil, err
		}
		rows, _ := t.Dims()
		combined.Slice(offset, offset+rows, 0, len(f.channels)).(*mat.Dense).Copy(t)
		offset += rows
	}
	return combined, nil
}
