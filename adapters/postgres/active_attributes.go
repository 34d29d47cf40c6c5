package postgres

import (
	"context"
	"fmt"

	"goclean/domain/core"
	"goclean/ports"

	"github.com/jmoiron/sqlx"
)

// activeAttributeSource reads the attributes flagged by the external error
// detector from the dk_cells table.
type activeAttributeSource struct {
	db *sqlx.DB
}

// NewActiveAttributeSource creates an active-attribute source over Postgres.
func NewActiveAttributeSource(db *sqlx.DB) ports.ActiveAttributeSource {
	return &activeAttributeSource{db: db}
}

// ActiveAttributes returns the distinct attributes containing at least one
// suspected-erroneous cell. An empty set is fatal: there is nothing to clean.
func (s *activeAttributeSource) ActiveAttributes(ctx context.Context) ([]string, error) {
	var attrs []string
	err := s.db.SelectContext(ctx, &attrs, `SELECT DISTINCT attribute FROM dk_cells ORDER BY attribute`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dk_cells: %w", err)
	}
	if len(attrs) == 0 {
		return nil, core.ErrNoActiveAttributes
	}
	return attrs, nil
}
