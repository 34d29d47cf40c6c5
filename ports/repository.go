package ports

import (
	"context"

	"goclean/domain/cell"
	"goclean/domain/core"
)

// DomainRepository persists the finalized cell_domain batch and its
// long-format expansion. Records are indexed by vid with secondary lookups by
// tid and cid.
type DomainRepository interface {
	// StoreDomains persists the record batch and materializes the pos_values
	// long format (one row per variable, candidate value, 1-based position).
	StoreDomains(ctx context.Context, records []cell.DomainRecord) error

	// All returns the whole persisted batch in vid order.
	All(ctx context.Context) ([]cell.DomainRecord, error)

	GetByVID(ctx context.Context, vid core.VID) (*cell.DomainRecord, error)
	GetByTID(ctx context.Context, tid core.TID) ([]cell.DomainRecord, error)
	GetByCID(ctx context.Context, cid core.CID) (*cell.DomainRecord, error)
}
