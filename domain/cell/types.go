package cell

import (
	"fmt"

	"goclean/domain/core"
)

// FixedStatus records how a cell's domain was finalized.
type FixedStatus int

const (
	// NotSet means the domain came from correlated co-occurrence and no weak
	// label has been asserted yet.
	NotSet FixedStatus = iota
	// SingleValue means no correlation signal existed and the domain was
	// padded with a random sample. Such cells skip estimator refinement.
	SingleValue
	// WeakLabel means the refiner asserted a high-confidence value.
	WeakLabel
)

// String returns the status name.
func (s FixedStatus) String() string {
	switch s {
	case NotSet:
		return "not_set"
	case SingleValue:
		return "single_value"
	case WeakLabel:
		return "weak_label"
	default:
		return fmt.Sprintf("fixed_status(%d)", int(s))
	}
}

// DomainRecord is one row of the cell_domain table: a variable cell together
// with its candidate domain and weak-labeling state. Records are created in
// one batch pass, possibly refined in place, then persisted and never mutated
// again within the session.
type DomainRecord struct {
	TID           core.TID    `db:"tid"`
	CID           core.CID    `db:"cid"`
	VID           core.VID    `db:"vid"`
	Attribute     string      `db:"attribute"`
	Domain        []string    `db:"-"`
	DomainSize    int         `db:"domain_size"`
	InitValue     string      `db:"init_value"`
	InitIndex     int         `db:"init_index"`
	WeakLabel     string      `db:"weak_label"`
	WeakLabelIdx  int         `db:"weak_label_idx"`
	Fixed         FixedStatus `db:"fixed"`
}

// IndexOf returns the position of val in the record's domain, -1 when absent.
func (r *DomainRecord) IndexOf(val string) int {
	for i, v := range r.Domain {
		if v == val {
			return i
		}
	}
	return -1
}

// Validate checks the record invariants: the initial value is in the domain,
// the domain has no duplicates, and all indexes point inside it.
func (r *DomainRecord) Validate() error {
	if len(r.Domain) == 0 {
		return fmt.Errorf("record vid=%d has an empty domain", r.VID)
	}
	if r.DomainSize != len(r.Domain) {
		return fmt.Errorf("record vid=%d domain_size=%d but domain has %d values", r.VID, r.DomainSize, len(r.Domain))
	}
	seen := make(map[string]struct{}, len(r.Domain))
	for _, v := range r.Domain {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("record vid=%d has duplicate domain value %q", r.VID, v)
		}
		seen[v] = struct{}{}
	}
	if r.InitIndex < 0 || r.InitIndex >= len(r.Domain) || r.Domain[r.InitIndex] != r.InitValue {
		return fmt.Errorf("record vid=%d init_index %d does not locate init value %q", r.VID, r.InitIndex, r.InitValue)
	}
	if r.WeakLabelIdx < 0 || r.WeakLabelIdx >= len(r.Domain) || r.Domain[r.WeakLabelIdx] != r.WeakLabel {
		return fmt.Errorf("record vid=%d weak_label_idx %d does not locate weak label %q", r.VID, r.WeakLabelIdx, r.WeakLabel)
	}
	return nil
}

// ValueProbability is one candidate value with its posterior probability as
// estimated by the external model.
type ValueProbability struct {
	Value       string
	Probability float64
}

// PosValue is the long-format expansion of one candidate domain value:
// one row per (variable, value, 1-based position). Downstream inference
// consumes the domain in this shape.
type PosValue struct {
	VID       core.VID `db:"vid"`
	CID       core.CID `db:"cid"`
	TID       core.TID `db:"tid"`
	Attribute string   `db:"attribute"`
	Value     string   `db:"rv_val"`
	ValID     int      `db:"val_id"`
}

// Expand materializes the long-format rows for a batch of records.
func Expand(records []DomainRecord) []PosValue {
	var out []PosValue
	for i := range records {
		r := &records[i]
		for pos, val := range r.Domain {
			out = append(out, PosValue{
				VID:       r.VID,
				CID:       r.CID,
				TID:       r.TID,
				Attribute: r.Attribute,
				Value:     val,
				ValID:     pos + 1,
			})
		}
	}
	return out
}
