package sale_test

import (
	"context"
	"fmt"
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
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

type saleFixture struct {
	store   *memory.Store
	service *sale.Service
	cashier security.Principal
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	store := memory.NewStore()

	svc := sale.NewService(
		store.Sales(),
		store.Items(),
		store.Customers(),
		ledger.NewService(store.Items()),
		numerator.New(store.Sequences()),
		store,
	)

	return &saleFixture{
		store:   store,
		service: svc,
		cashier: security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier},
	}
}

func (f *saleFixture) seedItem(t *testing.T, sku, price string, qty int64) id.ID {
	t.Helper()
	it := item.New(sku, "Item "+sku, types.MustMoney(price))
	it.QuantityOnHand = qty
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it.ID
}

func TestCheckout(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "10.00", 5)

	cust := customer.New("Jordan Blake")
	require.NoError(t, f.store.Customers().Create(ctx, cust))

	doc, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		CustomerID:     &cust.ID,
		PaymentType:    sale.PaymentCard,
		DiscountAmount: types.MustMoney("2.50"),
		Lines: []sale.CheckoutLine{
			{ItemID: itemID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, f.cashier.UserID, doc.CashierID)
	assert.True(t, doc.Subtotal.Equal(types.MustMoney("30.00")), "subtotal = %s", doc.Subtotal)
	assert.True(t, doc.TotalAmount.Equal(types.MustMoney("27.50")), "total = %s", doc.TotalAmount)

	// Price is snapshotted from the catalog onto the line.
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].UnitPrice.Equal(types.MustMoney("10.00")))

	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)

	// Customer stats are updated in the same transaction.
	updated, err := f.store.Customers().GetByID(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.VisitCount)
	assert.True(t, updated.TotalPurchases.Equal(types.MustMoney("27.50")))
}

func TestCheckout_PriceChangeDoesNotAffectPastSales(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "10.00", 10)

	doc, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: itemID, Quantity: 1}},
	})
	require.NoError(t, err)

	it, err := f.store.Items().GetByID(ctx, itemID)
	require.NoError(t, err)
	it.SellingPrice = types.MustMoney("12.00")
	require.NoError(t, f.store.Items().Update(ctx, it))

	saved, err := f.service.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, saved.Lines, 1)
	assert.True(t, saved.Lines[0].UnitPrice.Equal(types.MustMoney("10.00")))
}

func TestCheckout_AllOrNothing(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	plentiful := f.seedItem(t, "SKU-1", "1.00", 100)
	scarce := f.seedItem(t, "SKU-2", "1.00", 3)

	_, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines: []sale.CheckoutLine{
			{ItemID: plentiful, Quantity: 10},
			{ItemID: scarce, Quantity: 5},
		},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(3), appErr.Details["available"])

	// The satisfiable line must not have been deducted.
	qty, err := f.store.Items().GetQuantity(ctx, plentiful)
	require.NoError(t, err)
	assert.Equal(t, int64(100), qty)
}

func TestCheckout_InactiveItemRejected(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	it := item.New("SKU-1", "Retired Item", types.MustMoney("5.00"))
	it.QuantityOnHand = 10
	it.Active = false
	require.NoError(t, f.store.Items().Create(ctx, it))

	_, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCheckout_UnknownItemRejected(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.service.Checkout(context.Background(), f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: id.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCheckout_NegativeDiscountRejected(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "10.00", 5)

	_, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType:    sale.PaymentCash,
		DiscountAmount: types.MustMoney("-50.00"),
		Lines:          []sale.CheckoutLine{{ItemID: itemID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "discountAmount", appErr.Details["field"])

	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)
}

func TestCheckout_FailedCheckoutDoesNotConsumeNumber(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "1.00", 3)

	_, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: itemID, Quantity: 5}},
	})
	require.Error(t, err)

	doc, err := f.service.Checkout(ctx, f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: itemID, Quantity: 1}},
	})
	require.NoError(t, err)

	// The rolled-back attempt must not have burned SAL-...-00001.
	want := fmt.Sprintf("SAL-%d-00001", time.Now().Year())
	assert.Equal(t, want, doc.Number)
}

func TestCheckout_RequiresAuthentication(t *testing.T) {
	f := newSaleFixture(t)
	itemID := f.seedItem(t, "SKU-1", "1.00", 10)

	_, err := f.service.Checkout(context.Background(), security.Principal{}, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: itemID, Quantity: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestCheckout_RejectsEmptyAndNonPositiveLines(t *testing.T) {
	f := newSaleFixture(t)
	itemID := f.seedItem(t, "SKU-1", "1.00", 10)

	_, err := f.service.Checkout(context.Background(), f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
	})
	require.Error(t, err)

	_, err = f.service.Checkout(context.Background(), f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: itemID, Quantity: 0}},
	})
	require.Error(t, err)
}
