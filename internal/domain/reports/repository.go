package reports

import (
	"context"
)

// Repository defines report data access.
type Repository interface {
	// GetLowStock returns active items at or below their reorder level.
	GetLowStock(ctx context.Context) ([]LowStockRow, error)

	// GetSalesSummary aggregates sales over a period.
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)

	// GetItemSales returns per-item revenue and quantity over a period.
	GetItemSales(ctx context.Context, filter ProfitFilter) ([]ItemSales, error)

	// GetTopCustomers ranks customers by total purchases.
	GetTopCustomers(ctx context.Context, limit int) ([]TopCustomerRow, error)
}
