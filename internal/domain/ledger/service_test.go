package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/infrastructure/storage/memory"
)

func seedItem(t *testing.T, store *memory.Store, qty int64) id.ID {
	t.Helper()
	it := item.New("TEST-001", "Test Item", types.MustMoney("9.99"))
	it.QuantityOnHand = qty
	require.NoError(t, store.Items().Create(context.Background(), it))
	return it.ID
}

func TestIncrease(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())
	itemID := seedItem(t, store, 10)

	newQty, err := svc.Increase(context.Background(), itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), newQty)
}

func TestIncrease_RejectsNonPositive(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())
	itemID := seedItem(t, store, 10)

	for _, qty := range []int64{0, -3} {
		_, err := svc.Increase(context.Background(), itemID, qty)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestDecrease(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())
	itemID := seedItem(t, store, 10)

	newQty, err := svc.Decrease(context.Background(), itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), newQty)
}

func TestDecrease_InsufficientStock(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())
	itemID := seedItem(t, store, 3)

	_, err := svc.Decrease(context.Background(), itemID, 5)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(3), appErr.Details["available"])

	// Shortage must not touch the stock level.
	qty, err := svc.Availability(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), qty)
}

func TestDecrease_ToZeroIsAllowed(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())
	itemID := seedItem(t, store, 5)

	newQty, err := svc.Decrease(context.Background(), itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), newQty)
}

func TestCheckAvailability(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())

	okItem := seedItem(t, store, 10)

	short := item.New("TEST-002", "Short Item", types.MustMoney("1.00"))
	short.QuantityOnHand = 1
	require.NoError(t, store.Items().Create(context.Background(), short))

	err := svc.CheckAvailability(context.Background(), []ledger.Demand{
		{ItemID: okItem, Quantity: 2},
		{ItemID: short.ID, Quantity: 3},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, short.ID.String(), appErr.Details["item_id"])

	// A fully satisfiable demand passes.
	err = svc.CheckAvailability(context.Background(), []ledger.Demand{
		{ItemID: okItem, Quantity: 10},
		{ItemID: short.ID, Quantity: 1},
	})
	assert.NoError(t, err)
}

func TestAvailability_UnknownItem(t *testing.T) {
	store := memory.NewStore()
	svc := ledger.NewService(store.Items())

	_, err := svc.Availability(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
