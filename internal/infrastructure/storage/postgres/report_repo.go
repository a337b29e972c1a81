package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/types"
	"stockpos/internal/domain/reports"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository with aggregate queries over
// committed documents.
type ReportRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetLowStock returns active items at or below their reorder level.
func (r *ReportRepo) GetLowStock(ctx context.Context) ([]reports.LowStockRow, error) {
	var rows []reports.LowStockRow
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, `
		SELECT id AS item_id, sku, name, quantity_on_hand, reorder_level
		  FROM stock_items
		 WHERE active = true
		   AND quantity_on_hand <= reorder_level
		 ORDER BY quantity_on_hand, name`)
	if err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

// GetSalesSummary aggregates sales over a period.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	querier := r.txm.GetQuerier(ctx)

	summary := &reports.SalesSummary{
		From:          filter.FromDate,
		To:            filter.ToDate,
		GrossAmount:   types.Zero(),
		DiscountTotal: types.Zero(),
		NetAmount:     types.Zero(),
	}

	var totals struct {
		SaleCount     int64       `db:"sale_count"`
		GrossAmount   types.Money `db:"gross_amount"`
		DiscountTotal types.Money `db:"discount_total"`
		NetAmount     types.Money `db:"net_amount"`
	}
	err := pgxscan.Get(ctx, querier, &totals, `
		SELECT COUNT(*)                         AS sale_count,
		       COALESCE(SUM(subtotal), 0)        AS gross_amount,
		       COALESCE(SUM(discount_amount), 0) AS discount_total,
		       COALESCE(SUM(total_amount), 0)    AS net_amount
		  FROM doc_sales
		 WHERE date >= $1 AND date <= $2`, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, translateError(err)
	}
	summary.SaleCount = totals.SaleCount
	summary.GrossAmount = totals.GrossAmount
	summary.DiscountTotal = totals.DiscountTotal
	summary.NetAmount = totals.NetAmount

	err = pgxscan.Select(ctx, querier, &summary.ByCashier, `
		SELECT s.cashier_id,
		       u.username,
		       COUNT(*)                       AS sale_count,
		       COALESCE(SUM(s.total_amount), 0) AS net_amount
		  FROM doc_sales s
		  JOIN users u ON u.id = s.cashier_id
		 WHERE s.date >= $1 AND s.date <= $2
		 GROUP BY s.cashier_id, u.username
		 ORDER BY net_amount DESC`, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, translateError(err)
	}

	err = pgxscan.Select(ctx, querier, &summary.ByPaymentType, `
		SELECT payment_type,
		       COUNT(*)                     AS sale_count,
		       COALESCE(SUM(total_amount), 0) AS net_amount
		  FROM doc_sales
		 WHERE date >= $1 AND date <= $2
		 GROUP BY payment_type
		 ORDER BY net_amount DESC`, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, translateError(err)
	}

	return summary, nil
}

// GetItemSales returns per-item revenue and quantity over a period.
func (r *ReportRepo) GetItemSales(ctx context.Context, filter reports.ProfitFilter) ([]reports.ItemSales, error) {
	var rows []reports.ItemSales
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, `
		SELECT l.item_id,
		       i.sku,
		       i.name,
		       SUM(l.quantity)                       AS quantity_sold,
		       COALESCE(SUM(l.quantity * l.unit_price), 0) AS revenue
		  FROM doc_sale_lines l
		  JOIN doc_sales s   ON s.id = l.document_id
		  JOIN stock_items i ON i.id = l.item_id
		 WHERE s.date >= $1 AND s.date <= $2
		 GROUP BY l.item_id, i.sku, i.name
		 ORDER BY revenue DESC`, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

// GetTopCustomers ranks customers by total purchases.
func (r *ReportRepo) GetTopCustomers(ctx context.Context, limit int) ([]reports.TopCustomerRow, error) {
	var rows []reports.TopCustomerRow
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, `
		SELECT id AS customer_id, name, visit_count, total_purchases
		  FROM customers
		 ORDER BY total_purchases DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}
