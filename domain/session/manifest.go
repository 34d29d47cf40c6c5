package session

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"goclean/domain/core"
	"goclean/domain/dataset"
)

// Fingerprint is a deterministic hash over everything that fixes a session's
// output: the dataset contents and the functional parameters. Two sessions
// with equal fingerprints produce byte-identical domain batches.
type Fingerprint string

// Params are the functional parameters captured by the manifest.
type Params struct {
	Seed                int64   `json:"seed"`
	CorrelationStrength float64 `json:"cor_strength"`
	TopPercentile       float64 `json:"top_percentile"`
	DomainThreshold     float64 `json:"domain_thresh"`
	WeakLabelThreshold  float64 `json:"weak_label_thresh"`
	MaxDomain           int     `json:"max_domain"`
	MaxSample           int     `json:"max_sample"`
}

// Manifest records the complete specification of one cleaning session. It is
// written alongside the domain batch so a run can be audited and replayed.
type Manifest struct {
	SessionID   core.SessionID `json:"session_id"`
	DatasetHash Fingerprint    `json:"dataset_hash"`
	Tuples      int            `json:"tuples"`
	Attributes  int            `json:"attributes"`
	Params      Params         `json:"params"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewManifest builds the manifest for a session over the given dataset.
func NewManifest(id core.SessionID, ds *dataset.Dataset, p Params) *Manifest {
	datasetHash := HashDataset(ds)
	return &Manifest{
		SessionID:   id,
		DatasetHash: datasetHash,
		Tuples:      ds.RowCount(),
		Attributes:  ds.AttrCount(),
		Params:      p,
		Fingerprint: computeFingerprint(datasetHash, p),
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks that the manifest is complete.
func (m *Manifest) Validate() error {
	if m.SessionID == "" {
		return fmt.Errorf("manifest session_id cannot be empty")
	}
	if m.DatasetHash == "" || m.Fingerprint == "" {
		return fmt.Errorf("manifest fingerprints cannot be empty")
	}
	if m.Tuples <= 0 || m.Attributes <= 0 {
		return fmt.Errorf("manifest requires a non-empty dataset")
	}
	return nil
}

// HashDataset hashes the dataset contents in attribute and tuple order.
func HashDataset(ds *dataset.Dataset) Fingerprint {
	h := sha256.New()
	h.Write([]byte(strings.Join(ds.Attributes(), "\x1f")))
	for tid := 0; tid < ds.RowCount(); tid++ {
		h.Write([]byte{0x1e})
		h.Write([]byte(strings.Join(ds.Row(core.TID(tid)), "\x1f")))
	}
	return Fingerprint(fmt.Sprintf("%x", h.Sum(nil)))
}

func computeFingerprint(datasetHash Fingerprint, p Params) Fingerprint {
	data := fmt.Sprintf("dataset:%s|seed:%d|cor:%g|top:%g|dom:%g|wl:%g|maxdom:%d|maxsamp:%d",
		datasetHash, p.Seed, p.CorrelationStrength, p.TopPercentile,
		p.DomainThreshold, p.WeakLabelThreshold, p.MaxDomain, p.MaxSample)
	hash := sha256.Sum256([]byte(data))
	return Fingerprint(fmt.Sprintf("%x", hash))
}
