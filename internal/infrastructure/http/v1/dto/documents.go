package dto

import (
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/documents/saleret"
)

// --- Goods receipts ---

// CreateReceiptRequest creates a goods receipt draft, or confirms it
// immediately when ConfirmImmediately is set.
type CreateReceiptRequest struct {
	SupplierID         string               `json:"supplierId" binding:"required,uuid"`
	InvoiceRef         *string              `json:"invoiceRef,omitempty"`
	Lines              []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	ConfirmImmediately bool                 `json:"confirmImmediately,omitempty"`
}

// ReceiptLineRequest is one received line.
type ReceiptLineRequest struct {
	ItemID   string      `json:"itemId" binding:"required,uuid"`
	Quantity int64       `json:"quantity" binding:"required,gt=0"`
	UnitCost types.Money `json:"unitCost" binding:"required"`
}

// ToEntity converts request to domain entity.
func (r *CreateReceiptRequest) ToEntity(by id.ID) (*receipt.Receipt, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplier id")
	}

	doc := receipt.New(by, supplierID)
	doc.InvoiceRef = r.InvoiceRef
	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid item id").
				WithDetail("itemId", line.ItemID)
		}
		doc.AddLine(itemID, line.Quantity, line.UnitCost)
	}
	return doc, nil
}

// ReceiptLineResponse is one received line.
type ReceiptLineResponse struct {
	LineNo   int         `json:"lineNo"`
	ItemID   string      `json:"itemId"`
	Quantity int64       `json:"quantity"`
	UnitCost types.Money `json:"unitCost"`
	Amount   types.Money `json:"amount"`
}

// ReceiptResponse is the API view of a goods receipt.
type ReceiptResponse struct {
	ID         string                `json:"id"`
	Number     string                `json:"number"`
	Date       time.Time             `json:"date"`
	SupplierID string                `json:"supplierId"`
	InvoiceRef *string               `json:"invoiceRef,omitempty"`
	Status     string                `json:"status"`
	TotalCost  types.Money           `json:"totalCost"`
	Lines      []ReceiptLineResponse `json:"lines,omitempty"`
	Version    int                   `json:"version"`
}

// FromReceipt converts a goods receipt to its API view.
func FromReceipt(doc *receipt.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:         doc.ID.String(),
		Number:     doc.Number,
		Date:       doc.Date,
		SupplierID: doc.SupplierID.String(),
		InvoiceRef: doc.InvoiceRef,
		Status:     string(doc.Status),
		TotalCost:  doc.TotalCost,
		Version:    doc.Version,
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, ReceiptLineResponse{
			LineNo:   line.LineNo,
			ItemID:   line.ItemID.String(),
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
			Amount:   line.Amount(),
		})
	}
	return resp
}

// FromReceipts converts a list of goods receipts.
func FromReceipts(docs []*receipt.Receipt) []ReceiptResponse {
	out := make([]ReceiptResponse, len(docs))
	for i, doc := range docs {
		out[i] = FromReceipt(doc)
	}
	return out
}

// --- Sales ---

// CheckoutRequest processes a sale.
type CheckoutRequest struct {
	CustomerID     *string               `json:"customerId,omitempty"`
	PaymentType    string                `json:"paymentType" binding:"required,oneof=CASH CARD MOBILE"`
	DiscountAmount types.Money           `json:"discountAmount,omitempty"`
	Lines          []CheckoutLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CheckoutLineRequest is one requested line. No price field: prices
// come from the catalog.
type CheckoutLineRequest struct {
	ItemID   string `json:"itemId" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// ToInput converts request to the checkout input.
func (r *CheckoutRequest) ToInput() (sale.CheckoutInput, error) {
	input := sale.CheckoutInput{
		PaymentType:    sale.PaymentType(r.PaymentType),
		DiscountAmount: r.DiscountAmount,
	}

	if r.CustomerID != nil && *r.CustomerID != "" {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return input, apperror.NewValidation("invalid customer id")
		}
		input.CustomerID = &customerID
	}

	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return input, apperror.NewValidation("invalid item id").
				WithDetail("itemId", line.ItemID)
		}
		input.Lines = append(input.Lines, sale.CheckoutLine{
			ItemID:   itemID,
			Quantity: line.Quantity,
		})
	}
	return input, nil
}

// SaleLineResponse is one sold line.
type SaleLineResponse struct {
	LineNo    int         `json:"lineNo"`
	ItemID    string      `json:"itemId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Amount    types.Money `json:"amount"`
}

// SaleResponse is the API view of a sale.
type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	Date           time.Time          `json:"date"`
	CashierID      string             `json:"cashierId"`
	CustomerID     *string            `json:"customerId,omitempty"`
	PaymentType    string             `json:"paymentType"`
	Subtotal       types.Money        `json:"subtotal"`
	DiscountAmount types.Money        `json:"discountAmount"`
	TotalAmount    types.Money        `json:"totalAmount"`
	Lines          []SaleLineResponse `json:"lines,omitempty"`
	Version        int                `json:"version"`
}

// FromSale converts a sale to its API view.
func FromSale(doc *sale.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             doc.ID.String(),
		Number:         doc.Number,
		Date:           doc.Date,
		CashierID:      doc.CashierID.String(),
		PaymentType:    string(doc.PaymentType),
		Subtotal:       doc.Subtotal,
		DiscountAmount: doc.DiscountAmount,
		TotalAmount:    doc.TotalAmount,
		Version:        doc.Version,
	}
	if doc.CustomerID != nil {
		s := doc.CustomerID.String()
		resp.CustomerID = &s
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			LineNo:    line.LineNo,
			ItemID:    line.ItemID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount(),
		})
	}
	return resp
}

// FromSales converts a list of sales.
func FromSales(docs []*sale.Sale) []SaleResponse {
	out := make([]SaleResponse, len(docs))
	for i, doc := range docs {
		out[i] = FromSale(doc)
	}
	return out
}

// --- Returns ---

// ProcessReturnRequest records a return against a sale.
type ProcessReturnRequest struct {
	SaleID string              `json:"saleId" binding:"required,uuid"`
	Reason *string             `json:"reason,omitempty"`
	Lines  []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReturnLineRequest is one returned line.
type ReturnLineRequest struct {
	ItemID   string `json:"itemId" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// ToInput converts request to the return input.
func (r *ProcessReturnRequest) ToInput() (saleret.ProcessInput, error) {
	saleID, err := id.Parse(r.SaleID)
	if err != nil {
		return saleret.ProcessInput{}, apperror.NewValidation("invalid sale id")
	}

	input := saleret.ProcessInput{
		SaleID: saleID,
		Reason: r.Reason,
	}
	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return input, apperror.NewValidation("invalid item id").
				WithDetail("itemId", line.ItemID)
		}
		input.Lines = append(input.Lines, saleret.ReturnLine{
			ItemID:   itemID,
			Quantity: line.Quantity,
		})
	}
	return input, nil
}

// ReturnLineResponse is one returned line.
type ReturnLineResponse struct {
	LineNo          int         `json:"lineNo"`
	ItemID          string      `json:"itemId"`
	Quantity        int64       `json:"quantity"`
	UnitPriceAtSale types.Money `json:"unitPriceAtSale"`
	Amount          types.Money `json:"amount"`
}

// ReturnResponse is the API view of a return.
type ReturnResponse struct {
	ID           string               `json:"id"`
	Number       string               `json:"number"`
	Date         time.Time            `json:"date"`
	SaleID       string               `json:"saleId"`
	Reason       *string              `json:"reason,omitempty"`
	RefundAmount types.Money          `json:"refundAmount"`
	Lines        []ReturnLineResponse `json:"lines,omitempty"`
	Version      int                  `json:"version"`
}

// FromReturn converts a return to its API view.
func FromReturn(doc *saleret.Return) ReturnResponse {
	resp := ReturnResponse{
		ID:           doc.ID.String(),
		Number:       doc.Number,
		Date:         doc.Date,
		SaleID:       doc.SaleID.String(),
		Reason:       doc.Reason,
		RefundAmount: doc.RefundAmount,
		Version:      doc.Version,
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, ReturnLineResponse{
			LineNo:          line.LineNo,
			ItemID:          line.ItemID.String(),
			Quantity:        line.Quantity,
			UnitPriceAtSale: line.UnitPriceAtSale,
			Amount:          line.Amount(),
		})
	}
	return resp
}

// FromReturns converts a list of returns.
func FromReturns(docs []*saleret.Return) []ReturnResponse {
	out := make([]ReturnResponse, len(docs))
	for i, doc := range docs {
		out[i] = FromReturn(doc)
	}
	return out
}
