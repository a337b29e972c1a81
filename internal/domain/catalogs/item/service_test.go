package item_test

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
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

type itemFixture struct {
	store   *memory.Store
	service *item.Service
	admin   security.Principal
	cashier security.Principal
}

func newItemFixture(t *testing.T) *itemFixture {
	t.Helper()
	store := memory.NewStore()
	return &itemFixture{
		store:   store,
		service: item.NewService(store.Items(), numerator.New(store.Sequences())),
		admin:   security.Principal{UserID: id.New(), Username: "admin", Role: security.RoleAdmin},
		cashier: security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier},
	}
}

func TestCreate_GeneratesSKU(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	it := item.New("", "Unlabeled Item", types.MustMoney("4.00"))
	require.NoError(t, f.service.Create(ctx, f.admin, it))

	year := time.Now().Format("2006")
	assert.Equal(t, fmt.Sprintf("ITM-%s-00001", year), it.SKU)

	second := item.New("", "Another Item", types.MustMoney("4.00"))
	require.NoError(t, f.service.Create(ctx, f.admin, second))
	assert.Equal(t, fmt.Sprintf("ITM-%s-00002", year), second.SKU)
}

func TestCreate_DuplicateSKURejected(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	first := item.New("SKU-1", "First", types.MustMoney("4.00"))
	require.NoError(t, f.service.Create(ctx, f.admin, first))

	dup := item.New("SKU-1", "Second", types.MustMoney("5.00"))
	err := f.service.Create(ctx, f.admin, dup)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestCreate_CashierForbidden(t *testing.T) {
	f := newItemFixture(t)

	it := item.New("SKU-1", "Item", types.MustMoney("4.00"))
	err := f.service.Create(context.Background(), f.cashier, it)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestUpdate_RejectsDirectQuantityEdit(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("4.00"))
	require.NoError(t, f.service.Create(ctx, f.admin, it))

	edited, err := f.service.Get(ctx, it.ID)
	require.NoError(t, err)
	edited.QuantityOnHand += 100

	err = f.service.Update(ctx, f.admin, edited)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdate_CatalogAttributes(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("4.00"))
	require.NoError(t, f.service.Create(ctx, f.admin, it))

	edited, err := f.service.Get(ctx, it.ID)
	require.NoError(t, err)
	edited.Name = "Renamed Item"
	edited.SellingPrice = types.MustMoney("4.50")
	require.NoError(t, f.service.Update(ctx, f.admin, edited))

	saved, err := f.service.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Item", saved.Name)
	assert.True(t, saved.SellingPrice.Equal(types.MustMoney("4.50")))
}

func TestFindByCode(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	barcode := "4006381333931"
	it := item.New("SKU-1", "Item", types.MustMoney("4.00"))
	it.Barcode = &barcode
	require.NoError(t, f.service.Create(ctx, f.admin, it))

	bySKU, err := f.service.FindByCode(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, it.ID, bySKU.ID)

	byBarcode, err := f.service.FindByCode(ctx, barcode)
	require.NoError(t, err)
	assert.Equal(t, it.ID, byBarcode.ID)

	_, err = f.service.FindByCode(ctx, "no-such-code")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_Filters(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	groceries := "Groceries"
	rice := item.New("GROC-1", "Basmati Rice", types.MustMoney("12.50"))
	rice.Category = &groceries
	require.NoError(t, f.service.Create(ctx, f.admin, rice))

	water := item.New("BEVG-1", "Sparkling Water", types.MustMoney("0.90"))
	require.NoError(t, f.service.Create(ctx, f.admin, water))

	items, err := f.service.List(ctx, item.Filter{Category: &groceries})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, rice.ID, items[0].ID)

	items, err = f.service.List(ctx, item.Filter{Query: "water"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, water.ID, items[0].ID)
}
