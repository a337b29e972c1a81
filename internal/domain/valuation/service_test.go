package valuation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/domain/valuation"
	"stockpos/internal/infrastructure/storage/memory"
	"stockpos/pkg/numerator"
)

// fakeCache records sets and deletes so tests can observe cache traffic.
type fakeCache struct {
	entries map[string]string
	sets    int
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.entries[key] = value
	c.sets++
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		delete(c.entries, key)
		c.deleted = append(c.deleted, key)
	}
}

type valuationFixture struct {
	store    *memory.Store
	receipts *receipt.Service
	service  *valuation.Service
	cache    *fakeCache
	admin    security.Principal
	supplier id.ID
}

func newValuationFixture(t *testing.T) *valuationFixture {
	t.Helper()
	store := memory.NewStore()
	cache := newFakeCache()

	receipts := receipt.NewService(
		store.Receipts(),
		store.Items(),
		ledger.NewService(store.Items()),
		numerator.New(store.Sequences()),
		store,
	)

	sp := supplier.New("Acme Wholesale")
	require.NoError(t, store.Suppliers().Create(context.Background(), sp))

	return &valuationFixture{
		store:    store,
		receipts: receipts,
		service:  valuation.NewService(store.Receipts(), store.Items(), cache),
		cache:    cache,
		admin:    security.Principal{UserID: id.New(), Username: "admin", Role: security.RoleAdmin},
		supplier: sp.ID,
	}
}

func (f *valuationFixture) seedItem(t *testing.T, sku, sellingPrice string) id.ID {
	t.Helper()
	it := item.New(sku, "Item "+sku, types.MustMoney(sellingPrice))
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it.ID
}

func (f *valuationFixture) receiveStock(t *testing.T, itemID id.ID, qty int64, unitCost string) {
	t.Helper()
	doc := receipt.New(f.admin.UserID, f.supplier)
	doc.AddLine(itemID, qty, types.MustMoney(unitCost))
	require.NoError(t, f.receipts.ConfirmNew(context.Background(), f.admin, doc))
}

func TestAverageUnitCost_WeightedAverage(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "150.00")

	f.receiveStock(t, itemID, 10, "100.00")
	f.receiveStock(t, itemID, 5, "130.00")

	cost, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)

	// (10*100 + 5*130) / 15 = 110.00
	assert.True(t, cost.Value.Equal(types.MustMoney("110.00")), "cost = %s", cost.Value)
	assert.False(t, cost.Estimated)
}

func TestAverageUnitCost_DraftReceiptsExcluded(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "150.00")

	f.receiveStock(t, itemID, 10, "100.00")

	draft := receipt.New(f.admin.UserID, f.supplier)
	draft.AddLine(itemID, 100, types.MustMoney("9000.00"))
	require.NoError(t, f.receipts.SaveDraft(ctx, f.admin, draft))

	cost, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, cost.Value.Equal(types.MustMoney("100.00")), "cost = %s", cost.Value)
}

func TestAverageUnitCost_FallbackToSellingPrice(t *testing.T) {
	f := newValuationFixture(t)
	itemID := f.seedItem(t, "SKU-1", "42.50")

	cost, err := f.service.AverageUnitCost(context.Background(), itemID)
	require.NoError(t, err)

	assert.True(t, cost.Estimated)
	assert.True(t, cost.Value.Equal(types.MustMoney("42.50")), "cost = %s", cost.Value)
}

func TestAverageUnitCost_CachesResult(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "150.00")
	f.receiveStock(t, itemID, 10, "100.00")

	first, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets, "second read must come from cache")
	assert.True(t, first.Value.Equal(second.Value))
}

func TestInvalidate_DropsCachedCosts(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "SKU-1", "150.00")
	f.receiveStock(t, itemID, 10, "100.00")

	_, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)

	f.service.Invalidate(ctx, []id.ID{itemID})
	require.Len(t, f.cache.deleted, 1)

	// A new receipt shifts the average; after invalidation the fresh
	// value must be recomputed.
	f.receiveStock(t, itemID, 10, "200.00")
	f.service.Invalidate(ctx, []id.ID{itemID})

	cost, err := f.service.AverageUnitCost(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, cost.Value.Equal(types.MustMoney("150.00")), "cost = %s", cost.Value)
}
