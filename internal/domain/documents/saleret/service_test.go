package saleret_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/documents/saleret"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

type returnFixture struct {
	store   *memory.Store
	sales   *sale.Service
	returns *saleret.Service
	admin   security.Principal
	cashier security.Principal
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	store := memory.NewStore()
	ledgerSvc := ledger.NewService(store.Items())
	num := numerator.New(store.Sequences())

	return &returnFixture{
		store:   store,
		sales:   sale.NewService(store.Sales(), store.Items(), store.Customers(), ledgerSvc, num, store),
		returns: saleret.NewService(store.Returns(), store.Sales(), ledgerSvc, num, store),
		admin:   security.Principal{UserID: id.New(), Username: "admin", Role: security.RoleAdmin},
		cashier: security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier},
	}
}

// sellItem seeds an item with stock and sells the given quantity,
// returning the item and the resulting sale.
func (f *returnFixture) sellItem(t *testing.T, price string, stock, sold int64) (id.ID, *sale.Sale) {
	t.Helper()
	it := item.New("SKU-1", "Item", types.MustMoney(price))
	it.QuantityOnHand = stock
	require.NoError(t, f.store.Items().Create(context.Background(), it))

	doc, err := f.sales.Checkout(context.Background(), f.cashier, sale.CheckoutInput{
		PaymentType: sale.PaymentCash,
		Lines:       []sale.CheckoutLine{{ItemID: it.ID, Quantity: sold}},
	})
	require.NoError(t, err)
	return it.ID, doc
}

func TestProcess_RestoresStockAndRefundsAtSalePrice(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	itemID, sold := f.sellItem(t, "10.00", 10, 3)

	// Reprice the item after the sale; the refund must ignore it.
	it, err := f.store.Items().GetByID(ctx, itemID)
	require.NoError(t, err)
	it.SellingPrice = types.MustMoney("15.00")
	require.NoError(t, f.store.Items().Update(ctx, it))

	ret, err := f.returns.Process(ctx, f.admin, saleret.ProcessInput{
		SaleID: sold.ID,
		Lines:  []saleret.ReturnLine{{ItemID: itemID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.True(t, ret.RefundAmount.Equal(types.MustMoney("20.00")),
		"refund = %s", ret.RefundAmount)
	require.Len(t, ret.Lines, 1)
	assert.True(t, ret.Lines[0].UnitPriceAtSale.Equal(types.MustMoney("10.00")))

	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), qty)
}

func TestProcess_CumulativeOverReturnRejected(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	itemID, sold := f.sellItem(t, "10.00", 10, 3)

	_, err := f.returns.Process(ctx, f.admin, saleret.ProcessInput{
		SaleID: sold.ID,
		Lines:  []saleret.ReturnLine{{ItemID: itemID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Only one unit is still returnable.
	_, err = f.returns.Process(ctx, f.admin, saleret.ProcessInput{
		SaleID: sold.ID,
		Lines:  []saleret.ReturnLine{{ItemID: itemID, Quantity: 2}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOverReturn, appErr.Code)
	assert.Equal(t, int64(2), appErr.Details["requested"])
	assert.Equal(t, int64(1), appErr.Details["returnable"])

	// The rejected return must not touch the stock.
	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), qty)
}

func TestProcess_ConcurrentReturnsCannotExceedSold(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	itemID, sold := f.sellItem(t, "10.00", 10, 3)

	// Two simultaneous returns of 2 against 3 sold units: only one may
	// commit, the other must see its returned quantities and fail.
	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.returns.Process(ctx, f.admin, saleret.ProcessInput{
				SaleID: sold.ID,
				Lines:  []saleret.ReturnLine{{ItemID: itemID, Quantity: 2}},
			})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		if err == nil {
			continue
		}
		rejected++
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeOverReturn, appErr.Code)
	}
	require.Equal(t, 1, rejected, "exactly one of the two returns must be rejected")

	// 10 on hand, 3 sold, 2 returned.
	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), qty)
}

func TestProcess_ItemNotInSale(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	_, sold := f.sellItem(t, "10.00", 10, 3)

	other := item.New("SKU-2", "Other Item", types.MustMoney("1.00"))
	other.QuantityOnHand = 5
	require.NoError(t, f.store.Items().Create(ctx, other))

	_, err := f.returns.Process(ctx, f.admin, saleret.ProcessInput{
		SaleID: sold.ID,
		Lines:  []saleret.ReturnLine{{ItemID: other.ID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, other.ID.String(), appErr.Details["item_id"])
}

func TestProcess_UnknownSale(t *testing.T) {
	f := newReturnFixture(t)

	_, err := f.returns.Process(context.Background(), f.admin, saleret.ProcessInput{
		SaleID: id.New(),
		Lines:  []saleret.ReturnLine{{ItemID: id.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProcess_CashierForbidden(t *testing.T) {
	f := newReturnFixture(t)
	itemID, sold := f.sellItem(t, "10.00", 10, 3)

	_, err := f.returns.Process(context.Background(), f.cashier, saleret.ProcessInput{
		SaleID: sold.ID,
		Lines:  []saleret.ReturnLine{{ItemID: itemID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}
