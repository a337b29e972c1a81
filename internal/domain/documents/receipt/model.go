// Package receipt provides the goods receipt document (GRN).
// A confirmed receipt is the only place unit costs enter the system.
package receipt

import (
	"context"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
)

// Status of a goods receipt document.
type Status string

const (
	// StatusDraft receipts can be edited freely and have no stock effect.
	StatusDraft Status = "DRAFT"

	// StatusConfirmed receipts have applied their quantities to the
	// ledger. Confirmation is final.
	StatusConfirmed Status = "CONFIRMED"
)

// Receipt represents a goods receipt document.
type Receipt struct {
	entity.Document

	// SupplierID references the supplier catalog.
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// InvoiceRef is the supplier's invoice reference, optional.
	InvoiceRef *string `db:"invoice_ref" json:"invoiceRef,omitempty"`

	Status Status `db:"status" json:"status"`

	// TotalCost is recalculated from lines at confirmation.
	TotalCost types.Money `db:"total_cost" json:"totalCost"`

	// Table part: received goods.
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the goods receipt.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitCost is the purchase cost per unit. Feeds weighted average
	// cost valuation once the receipt is confirmed.
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
}

// Amount returns the line total cost.
func (l Line) Amount() types.Money {
	return l.UnitCost.Mul(types.MoneyFromInt(l.Quantity))
}

// New creates a draft goods receipt.
func New(by id.ID, supplierID id.ID) *Receipt {
	doc := entity.NewDocument(by, time.Now())
	return &Receipt{
		Document:   doc,
		SupplierID: supplierID,
		Status:     StatusDraft,
		TotalCost:  types.Zero(),
		Lines:      make([]Line, 0),
	}
}

// AddLine adds a line and recalculates the total.
func (r *Receipt) AddLine(itemID id.ID, quantity int64, unitCost types.Money) {
	r.Lines = append(r.Lines, Line{
		LineID:   id.New(),
		LineNo:   len(r.Lines) + 1,
		ItemID:   itemID,
		Quantity: quantity,
		UnitCost: unitCost,
	})
	r.RecalculateTotal()
}

// RecalculateTotal updates TotalCost from lines.
func (r *Receipt) RecalculateTotal() {
	total := types.Zero()
	for _, line := range r.Lines {
		total = total.Add(line.Amount())
	}
	r.TotalCost = types.Round2(total)
}

// IsConfirmed reports whether the receipt has been applied to stock.
func (r *Receipt) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// Validate checks document invariants.
func (r *Receipt) Validate(ctx context.Context) error {
	if id.IsNil(r.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range r.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
