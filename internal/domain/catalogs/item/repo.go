package item

import (
	"context"

	"stockpos/internal/core/id"
)

// Filter narrows item listings.
type Filter struct {
	Query    string // matches name, SKU or barcode
	Category *string
	Active   *bool
	Limit    int
	Offset   int
}

// Repository defines the interface for Item persistence.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetBySKU(ctx context.Context, sku string) (*Item, error)
	GetByBarcode(ctx context.Context, barcode string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, error)

	// GetMany resolves a batch of items in one round trip.
	// Used by checkout to snapshot prices for every line.
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Item, error)
}
