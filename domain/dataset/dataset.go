package dataset

import (
	"fmt"

	"goclean/domain/core"
)

// MissingValue is the sentinel recorded for empty or null cells. It is treated
// as its own category everywhere statistics are computed.
const MissingValue = "_nan_"

// IsMissing reports whether a raw value represents a missing observation.
func IsMissing(v string) bool {
	return v == "" || v == MissingValue
}

// Dataset is the raw tabular input to one cleaning session: an ordered list of
// attributes and the tuples observed for them. Tuples are addressed by TID in
// insertion order, which is the deterministic iteration order for the whole
// pipeline.
type Dataset struct {
	attributes []string
	attrIndex  map[string]int
	rows       [][]string
}

// New creates an empty dataset over the given attribute columns.
func New(attributes []string) (*Dataset, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("dataset requires at least one attribute")
	}
	idx := make(map[string]int, len(attributes))
	for i, attr := range attributes {
		if attr == "" {
			return nil, fmt.Errorf("attribute %d has an empty name", i)
		}
		if _, dup := idx[attr]; dup {
			return nil, fmt.Errorf("duplicate attribute %q", attr)
		}
		idx[attr] = i
	}
	return &Dataset{
		attributes: append([]string(nil), attributes...),
		attrIndex:  idx,
	}, nil
}

// Append adds one tuple. Short rows are padded with the missing sentinel and
// empty strings are normalized to it.
func (d *Dataset) Append(row []string) error {
	if len(row) > len(d.attributes) {
		return fmt.Errorf("row has %d values, dataset has %d attributes", len(row), len(d.attributes))
	}
	normalized := make([]string, len(d.attributes))
	for i := range normalized {
		if i < len(row) && !IsMissing(row[i]) {
			normalized[i] = row[i]
		} else {
			normalized[i] = MissingValue
		}
	}
	d.rows = append(d.rows, normalized)
	return nil
}

// Attributes returns the ordered attribute names.
func (d *Dataset) Attributes() []string {
	return d.attributes
}

// AttrCount returns the number of attributes.
func (d *Dataset) AttrCount() int {
	return len(d.attributes)
}

// AttrIndex returns the position of attr in the attribute order.
func (d *Dataset) AttrIndex(attr string) (int, bool) {
	i, ok := d.attrIndex[attr]
	return i, ok
}

// RowCount returns the number of tuples.
func (d *Dataset) RowCount() int {
	return len(d.rows)
}

// Value returns the observed value for a (tuple, attribute) cell. The missing
// sentinel is returned for cells that were never observed.
func (d *Dataset) Value(tid core.TID, attr string) string {
	i, ok := d.attrIndex[attr]
	if !ok || int(tid) < 0 || int(tid) >= len(d.rows) {
		return MissingValue
	}
	return d.rows[tid][i]
}

// Row returns the tuple for tid. The returned slice is owned by the dataset
// and must not be mutated.
func (d *Dataset) Row(tid core.TID) []string {
	return d.rows[tid]
}

// CellID derives the cell identifier for (tid, attr).
func (d *Dataset) CellID(tid core.TID, attr string) core.CID {
	i := d.attrIndex[attr]
	return core.CellID(tid, i, len(d.attributes))
}
