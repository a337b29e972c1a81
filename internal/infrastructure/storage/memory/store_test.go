package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/infrastructure/storage/memory"
)

func TestRunInTransaction_Commit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("1.00"))
	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		return store.Items().Create(ctx, it)
	})
	require.NoError(t, err)

	_, err = store.Items().GetByID(ctx, it.ID)
	assert.NoError(t, err)
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("1.00"))
	require.NoError(t, store.Items().Create(ctx, it))

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := store.Items().AddQuantity(ctx, it.ID, 10); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	qty, err := store.Items().GetQuantity(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty, "failed transaction must not leak writes")
}

func TestRunInTransaction_ConcurrentRollbackKeepsCommittedWrites(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("1.00"))
	require.NoError(t, store.Items().Create(ctx, it))

	// Interleave committing and failing transactions; a rollback must
	// never restore over an increment committed by another transaction.
	boom := errors.New("boom")
	var wg sync.WaitGroup
	const rounds = 25
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := store.RunInTransaction(ctx, func(ctx context.Context) error {
				_, err := store.Items().AddQuantity(ctx, it.ID, 1)
				return err
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			err := store.RunInTransaction(ctx, func(ctx context.Context) error {
				if _, err := store.Items().AddQuantity(ctx, it.ID, 100); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)
		}()
	}
	wg.Wait()

	qty, err := store.Items().GetQuantity(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(rounds), qty)
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	it := item.New("SKU-1", "Item", types.MustMoney("1.00"))
	require.NoError(t, store.Items().Create(ctx, it))

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		// The inner call joins the outer transaction instead of starting
		// its own; the outer failure discards the inner write too.
		err := store.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := store.Items().AddQuantity(ctx, it.ID, 5)
			return err
		})
		if err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	qty, err := store.Items().GetQuantity(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}
