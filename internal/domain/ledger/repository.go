// Package ledger provides the single source of truth for on-hand stock
// quantities.
package ledger

import (
	"context"

	"stockpos/internal/core/id"
)

// Repository defines storage operations for stock quantities.
// Quantities live on the stock item row itself; every mutation goes
// through this interface so that row locking is applied uniformly.
type Repository interface {
	// GetQuantity returns the current on-hand quantity without locking.
	GetQuantity(ctx context.Context, itemID id.ID) (int64, error)

	// GetQuantityForUpdate returns the on-hand quantity with a row lock.
	// Must be called inside a transaction.
	GetQuantityForUpdate(ctx context.Context, itemID id.ID) (int64, error)

	// AddQuantity atomically adjusts on-hand quantity by delta and
	// returns the new value. Delta may be negative.
	AddQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error)
}

// Demand is one line of a stock availability check.
type Demand struct {
	ItemID   id.ID
	Quantity int64
}
