// Package item provides the stock item catalog.
// A stock item carries its selling price and the on-hand quantity
// maintained by the ledger.
package item

import (
	"context"
	"strings"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
	"stockpos/internal/core/types"
)

// Item represents a sellable stock item.
type Item struct {
	entity.BaseEntity
	entity.Audit

	// SKU is the unique stock keeping unit code.
	SKU string `db:"sku" json:"sku"`

	// Barcode is the scannable code, optional.
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Name is the display name.
	Name string `db:"name" json:"name"`

	// Category groups items for reporting.
	Category *string `db:"category" json:"category,omitempty"`

	// SellingPrice is the current unit price charged at checkout.
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// QuantityOnHand is the ledger-maintained stock level.
	// Mutated only through the ledger, never directly.
	QuantityOnHand int64 `db:"quantity_on_hand" json:"quantityOnHand"`

	// ReorderLevel triggers the low stock report when on-hand falls
	// at or below it.
	ReorderLevel int64 `db:"reorder_level" json:"reorderLevel"`

	// Active controls whether the item can appear on new documents.
	Active bool `db:"active" json:"active"`
}

// New creates an Item with required fields.
func New(sku, name string, sellingPrice types.Money) *Item {
	return &Item{
		BaseEntity:   entity.NewBaseEntity(),
		SKU:          sku,
		Name:         name,
		SellingPrice: sellingPrice,
		Active:       true,
	}
}

// Validate checks invariants before persistence.
func (i *Item) Validate(ctx context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").
			WithDetail("field", "sellingPrice")
	}
	if i.ReorderLevel < 0 {
		return apperror.NewValidation("reorder level cannot be negative").
			WithDetail("field", "reorderLevel")
	}
	return nil
}

// IsLowStock reports whether on-hand is at or below the reorder level.
func (i *Item) IsLowStock() bool {
	return i.QuantityOnHand <= i.ReorderLevel
}
