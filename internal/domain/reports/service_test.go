package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/domain/reports"
	"stockpos/internal/domain/valuation"
	"stockpos/internal/infrastructure/cache"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

type reportFixture struct {
	store    *memory.Store
	receipts *receipt.Service
	sales    *sale.Service
	service  *reports.Service
	admin    security.Principal
	cashier  security.Principal
	supplier id.ID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := memory.NewStore()
	ledgerSvc := ledger.NewService(store.Items())
	num := numerator.New(store.Sequences())

	valuationSvc := valuation.NewService(store.Receipts(), store.Items(), cache.NewNoop())

	sp := supplier.New("Acme Wholesale")
	require.NoError(t, store.Suppliers().Create(context.Background(), sp))

	return &reportFixture{
		store:    store,
		receipts: receipt.NewService(store.Receipts(), store.Items(), ledgerSvc, num, store),
		sales:    sale.NewService(store.Sales(), store.Items(), store.Customers(), ledgerSvc, num, store),
		service:  reports.NewService(store.Reports(), valuationSvc, store),
		admin:    security.Principal{UserID: id.New(), Username: "admin", Role: security.RoleAdmin},
		cashier:  security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier},
		supplier: sp.ID,
	}
}

func (f *reportFixture) seedItem(t *testing.T, sku, price string, reorder int64) *item.Item {
	t.Helper()
	it := item.New(sku, "Item "+sku, types.MustMoney(price))
	it.ReorderLevel = reorder
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it
}

func (f *reportFixture) receiveStock(t *testing.T, itemID id.ID, qty int64, unitCost string) {
	t.Helper()
	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, qty, types.MustMoney(unitCost))
	require.NoError(t, f.receipts.ConfirmNew(context.Background(), f.admin, doc))
}

func (f *reportFixture) sell(t *testing.T, itemID id.ID, qty int64, discount string) *sale.Sale {
	t.Helper()
	doc, err := f.sales.Checkout(context.Background(), f.cashier, sale.CheckoutInput{
		PaymentType:    sale.PaymentCash,
		DiscountAmount: types.MustMoney(discount),
		Lines:          []sale.CheckoutLine{{ItemID: itemID, Quantity: qty}},
	})
	require.NoError(t, err)
	return doc
}

func period() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func TestGetProfit(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	received := f.seedItem(t, "SKU-1", "10.00", 0)
	f.receiveStock(t, received.ID, 10, "6.00")
	f.sell(t, received.ID, 4, "0.00")

	// Received but never sold: must not appear in the report.
	f.seedItem(t, "SKU-2", "3.00", 0)

	from, to := period()
	report, err := f.service.GetProfit(ctx, f.admin, reports.ProfitFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, received.ID, row.ItemID)
	assert.Equal(t, int64(4), row.QuantitySold)
	assert.True(t, row.Revenue.Equal(types.MustMoney("40.00")), "revenue = %s", row.Revenue)
	assert.True(t, row.Cost.Equal(types.MustMoney("24.00")), "cost = %s", row.Cost)
	assert.True(t, row.Profit.Equal(types.MustMoney("16.00")), "profit = %s", row.Profit)
	assert.True(t, row.MarginPercent.Equal(types.MustMoney("40.00")), "margin = %s", row.MarginPercent)
	assert.False(t, row.EstimatedCost)
	assert.False(t, report.ContainsEstimates)
}

func TestGetProfit_FlagsEstimatedCosts(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	// Sold without any receipt history.
	it := f.seedItem(t, "SKU-1", "5.00", 0)
	_, err := f.store.Items().AddQuantity(ctx, it.ID, 10)
	require.NoError(t, err)
	f.sell(t, it.ID, 2, "0.00")

	from, to := period()
	report, err := f.service.GetProfit(ctx, f.admin, reports.ProfitFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.True(t, report.Rows[0].EstimatedCost)
	assert.True(t, report.ContainsEstimates)
	// Cost estimated at the selling price makes the row break even.
	assert.True(t, report.Rows[0].Profit.Equal(types.Zero()))
}

func TestGetProfit_CashierForbidden(t *testing.T) {
	f := newReportFixture(t)
	from, to := period()

	_, err := f.service.GetProfit(context.Background(), f.cashier, reports.ProfitFilter{FromDate: from, ToDate: to})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestGetSalesSummary(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	it := f.seedItem(t, "SKU-1", "10.00", 0)
	f.receiveStock(t, it.ID, 20, "6.00")
	f.sell(t, it.ID, 2, "1.00")
	f.sell(t, it.ID, 3, "0.00")

	from, to := period()
	summary, err := f.service.GetSalesSummary(ctx, f.cashier, reports.SalesSummaryFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.SaleCount)
	assert.True(t, summary.GrossAmount.Equal(types.MustMoney("50.00")), "gross = %s", summary.GrossAmount)
	assert.True(t, summary.DiscountTotal.Equal(types.MustMoney("1.00")))
	assert.True(t, summary.NetAmount.Equal(types.MustMoney("49.00")))

	require.Len(t, summary.ByCashier, 1)
	assert.Equal(t, f.cashier.UserID, summary.ByCashier[0].CashierID)
	assert.Equal(t, int64(2), summary.ByCashier[0].SaleCount)

	require.Len(t, summary.ByPaymentType, 1)
	assert.Equal(t, string(sale.PaymentCash), summary.ByPaymentType[0].PaymentType)
}

func TestGetSalesSummary_InvalidPeriod(t *testing.T) {
	f := newReportFixture(t)
	now := time.Now()

	_, err := f.service.GetSalesSummary(context.Background(), f.cashier, reports.SalesSummaryFilter{
		FromDate: now,
		ToDate:   now.Add(-time.Hour),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = f.service.GetSalesSummary(context.Background(), f.cashier, reports.SalesSummaryFilter{})
	require.Error(t, err)
}

func TestGetLowStock(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	low := f.seedItem(t, "SKU-1", "1.00", 5)
	_, err := f.store.Items().AddQuantity(ctx, low.ID, 2)
	require.NoError(t, err)

	healthy := f.seedItem(t, "SKU-2", "1.00", 5)
	_, err = f.store.Items().AddQuantity(ctx, healthy.ID, 50)
	require.NoError(t, err)

	rows, err := f.service.GetLowStock(ctx, f.cashier)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ItemID)
	assert.Equal(t, int64(2), rows[0].QuantityOnHand)
	assert.Equal(t, int64(5), rows[0].ReorderLevel)
}

func TestGetTopCustomers(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	it := f.seedItem(t, "SKU-1", "10.00", 0)
	f.receiveStock(t, it.ID, 100, "5.00")

	big := customer.New("Big Spender")
	small := customer.New("Occasional Shopper")
	require.NoError(t, f.store.Customers().Create(ctx, big))
	require.NoError(t, f.store.Customers().Create(ctx, small))

	_, err := f.sales.Checkout(ctx, f.cashier, sale.CheckoutInput{
		CustomerID:  &big.ID,
		PaymentType: sale.PaymentCard,
		Lines:       []sale.CheckoutLine{{ItemID: it.ID, Quantity: 8}},
	})
	require.NoError(t, err)
	_, err = f.sales.Checkout(ctx, f.cashier, sale.CheckoutInput{
		CustomerID:  &small.ID,
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	rows, err := f.service.GetTopCustomers(ctx, f.cashier, 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, big.ID, rows[0].CustomerID)
	assert.True(t, rows[0].TotalPurchases.Equal(types.MustMoney("80.00")))
	assert.Equal(t, small.ID, rows[1].CustomerID)

	// Limit caps the ranking.
	rows, err = f.service.GetTopCustomers(ctx, f.cashier, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
