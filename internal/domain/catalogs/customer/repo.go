package customer

import (
	"context"

	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
)

// Filter narrows customer listings.
type Filter struct {
	Query  string // matches name or phone
	Limit  int
	Offset int
}

// Repository defines the interface for Customer persistence.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	List(ctx context.Context, filter Filter) ([]*Customer, error)

	// IncrementStats bumps visit count and adds the sale total to the
	// running purchase total. Called inside the checkout transaction.
	IncrementStats(ctx context.Context, customerID id.ID, amount types.Money) error
}
