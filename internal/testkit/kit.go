package testkit

import (
	"context"
	"fmt"
	"sync"

	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/domain/dataset"
	"goclean/ports"
)

// HospitalDataset builds a small synthetic dataset with strongly correlated
// attributes: every city determines its state and zip, with a handful of
// typo'd cells sprinkled in. Useful for exercising the whole pipeline
// without external data.
func HospitalDataset() *dataset.Dataset {
	ds, err := dataset.New([]string{"city", "state", "zip", "phone"})
	if err != nil {
		panic(err)
	}
	rows := [][]string{
		{"birmingham", "al", "35233", "205-555-0001"},
		{"birmingham", "al", "35233", "205-555-0002"},
		{"birmingham", "ax", "35233", "205-555-0003"}, // typo'd state
		{"boston", "ma", "02118", "617-555-0004"},
		{"boston", "ma", "02118", "617-555-0005"},
		{"boston", "ma", "02119", "617-555-0006"},
		{"chicago", "il", "60611", "312-555-0007"},
		{"chicago", "il", "60611", ""},
		{"chicago", "il", "60612", "312-555-0009"},
		{"birmingham", "al", "35233", "205-555-0010"},
	}
	for _, row := range rows {
		if err := ds.Append(row); err != nil {
			panic(err)
		}
	}
	return ds
}

// StaticDatasetReader serves a pre-built dataset.
type StaticDatasetReader struct {
	Dataset *dataset.Dataset
}

// Read returns the configured dataset.
func (s *StaticDatasetReader) Read(ctx context.Context) (*dataset.Dataset, error) {
	if s.Dataset == nil {
		return nil, fmt.Errorf("no dataset configured")
	}
	return s.Dataset, nil
}

// StaticAttributeSource serves a fixed active-attribute set.
type StaticAttributeSource struct {
	Attrs []string
}

// ActiveAttributes returns the configured set, or the empty-set error.
func (s *StaticAttributeSource) ActiveAttributes(ctx context.Context) ([]string, error) {
	if len(s.Attrs) == 0 {
		return nil, core.ErrNoActiveAttributes
	}
	return s.Attrs, nil
}

// MemoryDomainRepository keeps the domain batch in memory. It mirrors the
// Postgres repository contract closely enough for pipeline tests and local
// runs without a database.
type MemoryDomainRepository struct {
	mu      sync.RWMutex
	records []cell.DomainRecord
	pos     []cell.PosValue
}

// NewMemoryDomainRepository creates an empty in-memory repository.
func NewMemoryDomainRepository() *MemoryDomainRepository {
	return &MemoryDomainRepository{}
}

// StoreDomains stores the batch and its long-format expansion.
func (m *MemoryDomainRepository) StoreDomains(ctx context.Context, records []cell.DomainRecord) error {
	if len(records) == 0 {
		return core.ErrEmptyDomain
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]cell.DomainRecord(nil), records...)
	m.pos = cell.Expand(records)
	return nil
}

// All returns the whole stored batch in vid order.
func (m *MemoryDomainRepository) All(ctx context.Context) ([]cell.DomainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]cell.DomainRecord(nil), m.records...), nil
}

// GetByVID retrieves one record by variable id.
func (m *MemoryDomainRepository) GetByVID(ctx context.Context, vid core.VID) (*cell.DomainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.records {
		if m.records[i].VID == vid {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("domain record not found: vid=%d", vid)
}

// GetByCID retrieves one record by cell id.
func (m *MemoryDomainRepository) GetByCID(ctx context.Context, cid core.CID) (*cell.DomainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.records {
		if m.records[i].CID == cid {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("domain record not found: cid=%d", cid)
}

// GetByTID retrieves every record of one tuple, in vid order.
func (m *MemoryDomainRepository) GetByTID(ctx context.Context, tid core.TID) ([]cell.DomainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []cell.DomainRecord
	for i := range m.records {
		if m.records[i].TID == tid {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// Records returns the stored batch.
func (m *MemoryDomainRepository) Records() []cell.DomainRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records
}

// PosValues returns the stored long-format rows.
func (m *MemoryDomainRepository) PosValues() []cell.PosValue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pos
}

// StubEstimator returns canned predictions, one list per variable cell.
type StubEstimator struct {
	Predictions [][]cell.ValueProbability
}

// Fit accepts any session inputs.
func (s *StubEstimator) Fit(ctx context.Context, ds *dataset.Dataset, activeAttrs []string, records []cell.DomainRecord) error {
	return nil
}

// Train is a no-op.
func (s *StubEstimator) Train(ctx context.Context, epochs, batchSize int) error {
	return nil
}

// PredictBatch returns the canned predictions.
func (s *StubEstimator) PredictBatch(ctx context.Context) ([][]cell.ValueProbability, error) {
	return s.Predictions, nil
}

var _ ports.DatasetReader = (*StaticDatasetReader)(nil)
var _ ports.DomainRepository = (*MemoryDomainRepository)(nil)
var _ ports.ActiveAttributeSource = (*StaticAttributeSource)(nil)
var _ ports.Estimator = (*StubEstimator)(nil)
