package ports

import (
	"context"

	"goclean/domain/dataset"
)

// DatasetReader loads the raw tabular dataset for a cleaning session.
type DatasetReader interface {
	Read(ctx context.Context) (*dataset.Dataset, error)
}
