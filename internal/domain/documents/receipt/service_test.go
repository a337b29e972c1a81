package receipt_test

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
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

type receiptFixture struct {
	store    *memory.Store
	service  *receipt.Service
	admin    security.Principal
	cashier  security.Principal
	supplier id.ID
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	t.Helper()
	store := memory.NewStore()

	svc := receipt.NewService(
		store.Receipts(),
		store.Items(),
		ledger.NewService(store.Items()),
		numerator.New(store.Sequences()),
		store,
	)

	sp := supplier.New("Acme Wholesale")
	require.NoError(t, store.Suppliers().Create(context.Background(), sp))

	return &receiptFixture{
		store:    store,
		service:  svc,
		admin:    security.Principal{UserID: id.New(), Username: "admin", Role: security.RoleAdmin},
		cashier:  security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier},
		supplier: sp.ID,
	}
}

func (f *receiptFixture) seedItem(t *testing.T, sku string, qty int64) id.ID {
	t.Helper()
	it := item.New(sku, "Item "+sku, types.MustMoney("5.00"))
	it.QuantityOnHand = qty
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it.ID
}

func TestConfirm_AppliesStockAndTotal(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", 0)

	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, 10, types.MustMoney("100.00"))
	doc.AddLine(itemID, 5, types.MustMoney("130.00"))
	require.NoError(t, f.service.SaveDraft(ctx, f.admin, doc))

	year := time.Now().Format("2006")
	assert.Equal(t, fmt.Sprintf("GRN-%s-00001", year), doc.Number)

	var notified []id.ID
	f.service.OnConfirmed(func(_ context.Context, confirmed *receipt.Receipt) {
		for _, line := range confirmed.Lines {
			notified = append(notified, line.ItemID)
		}
	})

	confirmed, err := f.service.Confirm(ctx, f.admin, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.TotalCost.Equal(types.MustMoney("1650.00")),
		"total cost = %s", confirmed.TotalCost)

	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), qty)

	assert.Equal(t, []id.ID{itemID, itemID}, notified)
}

func TestConfirm_AlreadyConfirmedRejected(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", 0)

	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, 10, types.MustMoney("2.00"))
	require.NoError(t, f.service.SaveDraft(ctx, f.admin, doc))

	_, err := f.service.Confirm(ctx, f.admin, doc.ID)
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, f.admin, doc.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReceiptConfirmed, appErr.Code)

	// The rejected second confirmation must not double the stock.
	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)
}

func TestConfirm_MissingItemRollsBack(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	knownID := f.seedItem(t, "SKU-1", 0)

	// Build the draft through the repository so an unknown item can be
	// smuggled onto the lines.
	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(knownID, 7, types.MustMoney("1.00"))
	doc.AddLine(id.New(), 3, types.MustMoney("1.00"))
	doc.Number = "GRN-MANUAL-1"
	require.NoError(t, f.store.Receipts().Create(ctx, doc))
	require.NoError(t, f.store.Receipts().SaveLines(ctx, doc.ID, doc.Lines))

	_, err := f.service.Confirm(ctx, f.admin, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// The known item's stock must be untouched and the document still a
	// draft.
	qty, err := f.store.Items().GetQuantity(ctx, knownID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)

	saved, err := f.store.Receipts().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.StatusDraft, saved.Status)
}

func TestConfirm_CashierForbidden(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", 0)

	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, 1, types.MustMoney("1.00"))
	require.NoError(t, f.service.SaveDraft(ctx, f.admin, doc))

	_, err := f.service.Confirm(ctx, f.cashier, doc.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestSaveDraft_CashierForbidden(t *testing.T) {
	f := newReceiptFixture(t)
	itemID := f.seedItem(t, "SKU-1", 0)

	doc := receipt.New(f.cashier.UserID, f.supplier)
	doc.AddLine(itemID, 1, types.MustMoney("1.00"))

	err := f.service.SaveDraft(context.Background(), f.cashier, doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestConfirmNew_SingleShot(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", 2)

	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, 8, types.MustMoney("4.25"))
	require.NoError(t, f.service.ConfirmNew(ctx, f.admin, doc))

	assert.Equal(t, receipt.StatusConfirmed, doc.Status)

	qty, err := f.store.Items().GetQuantity(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)
}
