// Package saleret provides the sale return document.
// Returns always reference the original sale and refund at the price
// captured on that sale, not the current catalog price.
package saleret

import (
	"context"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
)

// Return represents a processed sale return.
type Return struct {
	entity.Document

	// SaleID references the original sale document.
	SaleID id.ID `db:"sale_id" json:"saleId"`

	// Reason is a free-form note, optional.
	Reason *string `db:"reason" json:"reason,omitempty"`

	// RefundAmount is the sum of line refunds at sale-time prices.
	RefundAmount types.Money `db:"refund_amount" json:"refundAmount"`

	// Table part: returned goods.
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a returned line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPriceAtSale is copied from the original sale line.
	UnitPriceAtSale types.Money `db:"unit_price_at_sale" json:"unitPriceAtSale"`
}

// Amount returns the line refund.
func (l Line) Amount() types.Money {
	return l.UnitPriceAtSale.Mul(types.MoneyFromInt(l.Quantity))
}

// New creates a return document against a sale.
func New(by id.ID, saleID id.ID) *Return {
	doc := entity.NewDocument(by, time.Now())
	return &Return{
		Document:     doc,
		SaleID:       saleID,
		RefundAmount: types.Zero(),
		Lines:        make([]Line, 0),
	}
}

// RecalculateRefund updates RefundAmount from lines.
func (r *Return) RecalculateRefund() {
	total := types.Zero()
	for _, line := range r.Lines {
		total = total.Add(line.Amount())
	}
	r.RefundAmount = types.Round2(total)
}

// Validate checks document invariants.
func (r *Return) Validate(ctx context.Context) error {
	if id.IsNil(r.SaleID) {
		return apperror.NewValidation("sale reference is required").
			WithDetail("field", "saleId")
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
	}
	return nil
}
