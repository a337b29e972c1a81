// Package sale provides the sale document created at checkout.
// Line prices are snapshots of the catalog price at sale time, so later
// price changes never rewrite history.
package sale

import (
	"context"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
)

// PaymentType is the tender used at checkout.
type PaymentType string

const (
	PaymentCash   PaymentType = "CASH"
	PaymentCard   PaymentType = "CARD"
	PaymentMobile PaymentType = "MOBILE"
)

func isValidPaymentType(p PaymentType) bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// Sale represents a completed checkout.
type Sale struct {
	entity.Document

	// CashierID is the user who ran the checkout.
	CashierID id.ID `db:"cashier_id" json:"cashierId"`

	// CustomerID is optional; anonymous sales carry nil.
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	PaymentType PaymentType `db:"payment_type" json:"paymentType"`

	// Subtotal is the sum of line amounts before discount.
	Subtotal types.Money `db:"subtotal" json:"subtotal"`

	// DiscountAmount is applied to the whole sale. Never negative.
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`

	// TotalAmount is Subtotal minus DiscountAmount.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: sold goods.
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a sold line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice is the catalog price captured at checkout.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Amount returns the line total.
func (l Line) Amount() types.Money {
	return l.UnitPrice.Mul(types.MoneyFromInt(l.Quantity))
}

// New creates a sale document for the given cashier.
func New(cashierID id.ID, paymentType PaymentType) *Sale {
	doc := entity.NewDocument(cashierID, time.Now())
	return &Sale{
		Document:       doc,
		CashierID:      cashierID,
		PaymentType:    paymentType,
		Subtotal:       types.Zero(),
		DiscountAmount: types.Zero(),
		TotalAmount:    types.Zero(),
		Lines:          make([]Line, 0),
	}
}

// RecalculateTotals updates Subtotal and TotalAmount from lines.
// The discount is subtracted as given, without clamping.
func (s *Sale) RecalculateTotals() {
	subtotal := types.Zero()
	for _, line := range s.Lines {
		subtotal = subtotal.Add(line.Amount())
	}
	s.Subtotal = types.Round2(subtotal)
	s.TotalAmount = types.Round2(subtotal.Sub(s.DiscountAmount))
}

// Validate checks document invariants.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.CashierID) {
		return apperror.NewValidation("cashier is required").
			WithDetail("field", "cashierId")
	}
	if !isValidPaymentType(s.PaymentType) {
		return apperror.NewValidation("invalid payment type").
			WithDetail("field", "paymentType").
			WithDetail("value", string(s.PaymentType))
	}
	if s.DiscountAmount.IsNegative() {
		return apperror.NewValidation("discount must not be negative").
			WithDetail("field", "discountAmount")
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range s.Lines {
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
