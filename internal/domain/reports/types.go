// Package reports provides read-only reporting over committed documents.
package reports

import (
	"time"

	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
)

// --- Low Stock Report ---

// LowStockRow is one item at or below its reorder level.
type LowStockRow struct {
	ItemID         id.ID  `db:"item_id" json:"itemId"`
	SKU            string `db:"sku" json:"sku"`
	Name           string `db:"name" json:"name"`
	QuantityOnHand int64  `db:"quantity_on_hand" json:"quantityOnHand"`
	ReorderLevel   int64  `db:"reorder_level" json:"reorderLevel"`
}

// --- Sales Summary Report ---

// SalesSummaryFilter defines the reporting period.
type SalesSummaryFilter struct {
	FromDate time.Time
	ToDate   time.Time
}

// SalesSummary aggregates sales for a period.
type SalesSummary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	SaleCount     int64       `json:"saleCount"`
	GrossAmount   types.Money `json:"grossAmount"`
	DiscountTotal types.Money `json:"discountTotal"`
	NetAmount     types.Money `json:"netAmount"`

	ByCashier     []CashierTotal `json:"byCashier"`
	ByPaymentType []PaymentTotal `json:"byPaymentType"`
}

// CashierTotal is the per-cashier breakdown.
type CashierTotal struct {
	CashierID id.ID       `db:"cashier_id" json:"cashierId"`
	Username  string      `db:"username" json:"username"`
	SaleCount int64       `db:"sale_count" json:"saleCount"`
	NetAmount types.Money `db:"net_amount" json:"netAmount"`
}

// PaymentTotal is the per-tender breakdown.
type PaymentTotal struct {
	PaymentType string      `db:"payment_type" json:"paymentType"`
	SaleCount   int64       `db:"sale_count" json:"saleCount"`
	NetAmount   types.Money `db:"net_amount" json:"netAmount"`
}

// --- Profit Report ---

// ProfitFilter defines the profit reporting period.
type ProfitFilter struct {
	FromDate time.Time
	ToDate   time.Time
}

// ProfitRow is the per-item profit contribution.
type ProfitRow struct {
	ItemID       id.ID       `json:"itemId"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	QuantitySold int64       `json:"quantitySold"`
	Revenue      types.Money `json:"revenue"`
	Cost         types.Money `json:"cost"`
	Profit       types.Money `json:"profit"`

	// MarginPercent is profit over revenue, 2 decimal places. Zero when
	// the row has no revenue.
	MarginPercent types.Money `json:"marginPercent"`

	// EstimatedCost marks rows whose unit cost fell back to the selling
	// price because the item has no confirmed receipt history.
	EstimatedCost bool `json:"estimatedCost"`
}

// ProfitReport aggregates margin over a period.
type ProfitReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Revenue     types.Money `json:"revenue"`
	Cost        types.Money `json:"cost"`
	GrossProfit types.Money `json:"grossProfit"`

	// ContainsEstimates is set when any row carries an estimated cost.
	ContainsEstimates bool `json:"containsEstimates"`

	Rows []ProfitRow `json:"rows"`
}

// --- Top Customers Report ---

// TopCustomerRow ranks customers by lifetime spend.
type TopCustomerRow struct {
	CustomerID     id.ID       `db:"customer_id" json:"customerId"`
	Name           string      `db:"name" json:"name"`
	VisitCount     int64       `db:"visit_count" json:"visitCount"`
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
}

// --- Item Sales aggregate used by the profit report ---

// ItemSales is revenue and quantity sold per item over a period.
type ItemSales struct {
	ItemID       id.ID       `db:"item_id" json:"itemId"`
	SKU          string      `db:"sku" json:"sku"`
	Name         string      `db:"name" json:"name"`
	QuantitySold int64       `db:"quantity_sold" json:"quantitySold"`
	Revenue      types.Money `db:"revenue" json:"revenue"`
}
