package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/id"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/ledger"
)

const itemsTable = "stock_items"

var itemColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"sku", "barcode", "name", "category", "selling_price",
	"quantity_on_hand", "reorder_level", "active",
}

// Compile-time checks: one table serves both the catalog and the ledger.
var _ item.Repository = (*ItemRepo)(nil)
var _ ledger.Repository = (*ItemRepo)(nil)

// ItemRepo implements item.Repository and ledger.Repository over the
// stock_items table. Quantity lives on the item row, so catalog reads
// and ledger locks hit the same row.
type ItemRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			it.ID, it.Version, it.CreatedAt, it.CreatedBy, it.UpdatedAt, it.UpdatedBy,
			it.SKU, it.Barcode, it.Name, it.Category, it.SellingPrice,
			it.QuantityOnHand, it.ReorderLevel, it.Active,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return translateError(err)
	}
	return nil
}

// Update modifies an item with optimistic locking. Quantity is excluded:
// only AddQuantity touches it.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	q := r.builder.Update(itemsTable).
		Set("version", it.Version+1).
		Set("updated_at", it.UpdatedAt).
		Set("updated_by", it.UpdatedBy).
		Set("sku", it.SKU).
		Set("barcode", it.Barcode).
		Set("name", it.Name).
		Set("category", it.Category).
		Set("selling_price", it.SellingPrice).
		Set("reorder_level", it.ReorderLevel).
		Set("active", it.Active).
		Where(squirrel.Eq{"id": it.ID, "version": it.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict("item", it.ID)
	}
	it.Version++
	return nil
}

// GetByID retrieves an item by ID.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	return r.getOne(ctx, squirrel.Eq{"id": itemID}, itemID)
}

// GetBySKU retrieves an item by SKU.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*item.Item, error) {
	return r.getOne(ctx, squirrel.Eq{"sku": sku}, sku)
}

// GetByBarcode retrieves an item by barcode.
func (r *ItemRepo) GetByBarcode(ctx context.Context, barcode string) (*item.Item, error) {
	return r.getOne(ctx, squirrel.Eq{"barcode": barcode}, barcode)
}

func (r *ItemRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*item.Item, error) {
	q := r.builder.Select(itemColumns...).From(itemsTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var it item.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &it, sql, args...); err != nil {
		return nil, notFoundOr(err, "item", key)
	}
	return &it, nil
}

// GetMany resolves a batch of items keyed by ID.
func (r *ItemRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*item.Item, error) {
	if len(ids) == 0 {
		return map[id.ID]*item.Item{}, nil
	}

	q := r.builder.Select(itemColumns...).From(itemsTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*item.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, translateError(err)
	}

	result := make(map[id.ID]*item.Item, len(items))
	for _, it := range items {
		result[it.ID] = it
	}
	return result, nil
}

// List retrieves items matching the filter.
func (r *ItemRepo) List(ctx context.Context, filter item.Filter) ([]*item.Item, error) {
	q := r.builder.Select(itemColumns...).From(itemsTable).OrderBy("name")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.Active != nil {
		q = q.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*item.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// --- ledger.Repository ---

// GetQuantity returns the current on-hand quantity without locking.
func (r *ItemRepo) GetQuantity(ctx context.Context, itemID id.ID) (int64, error) {
	var qty int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT quantity_on_hand FROM stock_items WHERE id = $1`, itemID).Scan(&qty)
	if err != nil {
		return 0, notFoundOr(err, "item", itemID)
	}
	return qty, nil
}

// GetQuantityForUpdate returns the on-hand quantity with a row lock.
func (r *ItemRepo) GetQuantityForUpdate(ctx context.Context, itemID id.ID) (int64, error) {
	var qty int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT quantity_on_hand FROM stock_items WHERE id = $1 FOR UPDATE`, itemID).Scan(&qty)
	if err != nil {
		return 0, notFoundOr(err, "item", itemID)
	}
	return qty, nil
}

// AddQuantity atomically adjusts the on-hand quantity.
func (r *ItemRepo) AddQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	var newQty int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`UPDATE stock_items
		    SET quantity_on_hand = quantity_on_hand + $2
		  WHERE id = $1
		RETURNING quantity_on_hand`, itemID, delta).Scan(&newQty)
	if err != nil {
		return 0, notFoundOr(err, "item", itemID)
	}
	return newQty, nil
}
