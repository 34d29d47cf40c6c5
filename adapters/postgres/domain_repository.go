package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/ports"

	"github.com/jmoiron/sqlx"
)

// domainSeparator joins domain values into one stored column. It matches the
// separator downstream inference expects in pos_values expansion.
const domainSeparator = "|||"

// domainRepository implements the DomainRepository interface over Postgres.
type domainRepository struct {
	db *sqlx.DB
}

// NewDomainRepository creates a new cell-domain repository.
func NewDomainRepository(db *sqlx.DB) ports.DomainRepository {
	return &domainRepository{db: db}
}

// domainRow is the cell_domain table shape.
type domainRow struct {
	VID          int    `db:"vid"`
	CID          int    `db:"cid"`
	TID          int    `db:"tid"`
	Attribute    string `db:"attribute"`
	Domain       string `db:"domain"`
	DomainSize   int    `db:"domain_size"`
	InitValue    string `db:"init_value"`
	InitIndex    int    `db:"init_index"`
	WeakLabel    string `db:"weak_label"`
	WeakLabelIdx int    `db:"weak_label_idx"`
	Fixed        int    `db:"fixed"`
}

// StoreDomains persists the record batch into cell_domain and materializes
// the pos_values long format. The batch replaces any previous session's
// tables.
func (r *domainRepository) StoreDomains(ctx context.Context, records []cell.DomainRecord) error {
	if len(records) == 0 {
		return core.ErrEmptyDomain
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ddl := []string{
		`DROP TABLE IF EXISTS pos_values`,
		`DROP TABLE IF EXISTS cell_domain`,
		`CREATE TABLE cell_domain (
			vid INTEGER PRIMARY KEY,
			cid INTEGER NOT NULL,
			tid INTEGER NOT NULL,
			attribute TEXT NOT NULL,
			domain TEXT NOT NULL,
			domain_size INTEGER NOT NULL,
			init_value TEXT NOT NULL,
			init_index INTEGER NOT NULL,
			weak_label TEXT NOT NULL,
			weak_label_idx INTEGER NOT NULL,
			fixed INTEGER NOT NULL
		)`,
		`CREATE INDEX cell_domain_tid_idx ON cell_domain (tid)`,
		`CREATE INDEX cell_domain_cid_idx ON cell_domain (cid)`,
		`CREATE TABLE pos_values (
			vid INTEGER NOT NULL,
			cid INTEGER NOT NULL,
			tid INTEGER NOT NULL,
			attribute TEXT NOT NULL,
			rv_val TEXT NOT NULL,
			val_id INTEGER NOT NULL
		)`,
		`CREATE INDEX pos_values_tid_attr_idx ON pos_values (tid, attribute)`,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare domain tables: %w", err)
		}
	}

	insertDomain := `INSERT INTO cell_domain (
		vid, cid, tid, attribute, domain, domain_size,
		init_value, init_index, weak_label, weak_label_idx, fixed
	) VALUES (
		:vid, :cid, :tid, :attribute, :domain, :domain_size,
		:init_value, :init_index, :weak_label, :weak_label_idx, :fixed
	)`
	for i := range records {
		if _, err := tx.NamedExecContext(ctx, insertDomain, toRow(&records[i])); err != nil {
			return fmt.Errorf("failed to insert cell_domain row vid=%d: %w", records[i].VID, err)
		}
	}

	insertPos := `INSERT INTO pos_values (vid, cid, tid, attribute, rv_val, val_id)
		VALUES (:vid, :cid, :tid, :attribute, :rv_val, :val_id)`
	for _, pv := range cell.Expand(records) {
		if _, err := tx.NamedExecContext(ctx, insertPos, pv); err != nil {
			return fmt.Errorf("failed to insert pos_values row vid=%d: %w", pv.VID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit domain batch: %w", err)
	}
	return nil
}

// All returns the whole persisted batch in vid order.
func (r *domainRepository) All(ctx context.Context) ([]cell.DomainRecord, error) {
	var rows []domainRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM cell_domain ORDER BY vid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain records: %w", err)
	}
	records := make([]cell.DomainRecord, len(rows))
	for i := range rows {
		records[i] = fromRow(&rows[i])
	}
	return records, nil
}

// GetByVID retrieves one record by variable id.
func (r *domainRepository) GetByVID(ctx context.Context, vid core.VID) (*cell.DomainRecord, error) {
	var row domainRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM cell_domain WHERE vid = $1`, int(vid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("domain record not found: vid=%d", vid)
		}
		return nil, fmt.Errorf("failed to get domain record: %w", err)
	}
	rec := fromRow(&row)
	return &rec, nil
}

// GetByCID retrieves one record by cell id.
func (r *domainRepository) GetByCID(ctx context.Context, cid core.CID) (*cell.DomainRecord, error) {
	var row domainRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM cell_domain WHERE cid = $1`, int(cid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("domain record not found: cid=%d", cid)
		}
		return nil, fmt.Errorf("failed to get domain record: %w", err)
	}
	rec := fromRow(&row)
	return &rec, nil
}

// GetByTID retrieves every record of one tuple, in vid order.
func (r *domainRepository) GetByTID(ctx context.Context, tid core.TID) ([]cell.DomainRecord, error) {
	var rows []domainRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM cell_domain WHERE tid = $1 ORDER BY vid`, int(tid))
	if err != nil {
		return nil, fmt.Errorf("failed to query domain records: %w", err)
	}
	records := make([]cell.DomainRecord, len(rows))
	for i := range rows {
		records[i] = fromRow(&rows[i])
	}
	return records, nil
}

func toRow(rec *cell.DomainRecord) domainRow {
	return domainRow{
		VID:          int(rec.VID),
		CID:          int(rec.CID),
		TID:          int(rec.TID),
		Attribute:    rec.Attribute,
		Domain:       strings.Join(rec.Domain, domainSeparator),
		DomainSize:   rec.DomainSize,
		InitValue:    rec.InitValue,
		InitIndex:    rec.InitIndex,
		WeakLabel:    rec.WeakLabel,
		WeakLabelIdx: rec.WeakLabelIdx,
		Fixed:        int(rec.Fixed),
	}
}

func fromRow(row *domainRow) cell.DomainRecord {
	return cell.DomainRecord{
		VID:          core.VID(row.VID),
		CID:          core.CID(row.CID),
		TID:          core.TID(row.TID),
		Attribute:    row.Attribute,
		Domain:       strings.Split(row.Domain, domainSeparator),
		DomainSize:   row.DomainSize,
		InitValue:    row.InitValue,
		InitIndex:    row.InitIndex,
		WeakLabel:    row.WeakLabel,
		WeakLabelIdx: row.WeakLabelIdx,
		Fixed:        cell.FixedStatus(row.Fixed),
	}
}
