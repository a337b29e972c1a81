package memory

import (
	"context"
	"sort"

	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/reports"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo computes report aggregates from in-memory documents.
type ReportRepo struct {
	store *Store
}

// Reports returns the report repository view of the store.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{store: s} }

func (r *ReportRepo) GetLowStock(ctx context.Context) ([]reports.LowStockRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var rows []reports.LowStockRow
	for _, it := range r.store.items {
		if !it.Active || it.QuantityOnHand > it.ReorderLevel {
			continue
		}
		rows = append(rows, reports.LowStockRow{
			ItemID:         it.ID,
			SKU:            it.SKU,
			Name:           it.Name,
			QuantityOnHand: it.QuantityOnHand,
			ReorderLevel:   it.ReorderLevel,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].QuantityOnHand != rows[j].QuantityOnHand {
			return rows[i].QuantityOnHand < rows[j].QuantityOnHand
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := &reports.SalesSummary{
		From:          filter.FromDate,
		To:            filter.ToDate,
		GrossAmount:   types.Zero(),
		DiscountTotal: types.Zero(),
		NetAmount:     types.Zero(),
	}

	byCashier := make(map[id.ID]*reports.CashierTotal)
	byPayment := make(map[string]*reports.PaymentTotal)

	for _, doc := range r.store.sales {
		if doc.Date.Before(filter.FromDate) || doc.Date.After(filter.ToDate) {
			continue
		}
		summary.SaleCount++
		summary.GrossAmount = summary.GrossAmount.Add(doc.Subtotal)
		summary.DiscountTotal = summary.DiscountTotal.Add(doc.DiscountAmount)
		summary.NetAmount = summary.NetAmount.Add(doc.TotalAmount)

		ct, ok := byCashier[doc.CashierID]
		if !ok {
			username := ""
			if u, found := r.store.users[doc.CashierID]; found {
				username = u.Username
			}
			ct = &reports.CashierTotal{CashierID: doc.CashierID, Username: username, NetAmount: types.Zero()}
			byCashier[doc.CashierID] = ct
		}
		ct.SaleCount++
		ct.NetAmount = ct.NetAmount.Add(doc.TotalAmount)

		pt, ok := byPayment[string(doc.PaymentType)]
		if !ok {
			pt = &reports.PaymentTotal{PaymentType: string(doc.PaymentType), NetAmount: types.Zero()}
			byPayment[string(doc.PaymentType)] = pt
		}
		pt.SaleCount++
		pt.NetAmount = pt.NetAmount.Add(doc.TotalAmount)
	}

	for _, ct := range byCashier {
		summary.ByCashier = append(summary.ByCashier, *ct)
	}
	sort.Slice(summary.ByCashier, func(i, j int) bool {
		return summary.ByCashier[i].NetAmount.GreaterThan(summary.ByCashier[j].NetAmount)
	})
	for _, pt := range byPayment {
		summary.ByPaymentType = append(summary.ByPaymentType, *pt)
	}
	sort.Slice(summary.ByPaymentType, func(i, j int) bool {
		return summary.ByPaymentType[i].NetAmount.GreaterThan(summary.ByPaymentType[j].NetAmount)
	})

	return summary, nil
}

func (r *ReportRepo) GetItemSales(ctx context.Context, filter reports.ProfitFilter) ([]reports.ItemSales, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byItem := make(map[id.ID]*reports.ItemSales)
	for docID, lines := range r.store.saleLines {
		doc, ok := r.store.sales[docID]
		if !ok || doc.Date.Before(filter.FromDate) || doc.Date.After(filter.ToDate) {
			continue
		}
		for _, line := range lines {
			row, ok := byItem[line.ItemID]
			if !ok {
				sku, name := "", ""
				if it, found := r.store.items[line.ItemID]; found {
					sku, name = it.SKU, it.Name
				}
				row = &reports.ItemSales{ItemID: line.ItemID, SKU: sku, Name: name, Revenue: types.Zero()}
				byItem[line.ItemID] = row
			}
			row.QuantitySold += line.Quantity
			row.Revenue = row.Revenue.Add(line.Amount())
		}
	}

	var rows []reports.ItemSales
	for _, row := range byItem {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Revenue.GreaterThan(rows[j].Revenue) })
	return rows, nil
}

func (r *ReportRepo) GetTopCustomers(ctx context.Context, limit int) ([]reports.TopCustomerRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var rows []reports.TopCustomerRow
	for _, c := range r.store.customers {
		rows = append(rows, reports.TopCustomerRow{
			CustomerID:     c.ID,
			Name:           c.Name,
			VisitCount:     c.VisitCount,
			TotalPurchases: c.TotalPurchases,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalPurchases.GreaterThan(rows[j].TotalPurchases)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
