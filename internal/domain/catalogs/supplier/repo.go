package supplier

import (
	"context"

	"stockpos/internal/core/id"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	Create(ctx context.Context, sp *Supplier) error
	Update(ctx context.Context, sp *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]*Supplier, error)
}
