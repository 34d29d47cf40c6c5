package ports

import "context"

// ActiveAttributeSource reports which attributes contain at least one
// suspected-erroneous cell, as flagged by an external error detector. Only
// cells on these attributes receive a generated domain.
type ActiveAttributeSource interface {
	ActiveAttributes(ctx context.Context) ([]string, error)
}
