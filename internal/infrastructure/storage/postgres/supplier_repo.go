package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/id"
	"stockpos/internal/domain/catalogs/supplier"
)

const suppliersTable = "suppliers"

var supplierColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"name", "contact_person", "phone", "address", "active",
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, sp *supplier.Supplier) error {
	q := r.builder.Insert(suppliersTable).
		Columns(supplierColumns...).
		Values(
			sp.ID, sp.Version, sp.CreatedAt, sp.CreatedBy, sp.UpdatedAt, sp.UpdatedBy,
			sp.Name, sp.ContactPerson, sp.Phone, sp.Address, sp.Active,
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

// Update modifies a supplier with optimistic locking.
func (r *SupplierRepo) Update(ctx context.Context, sp *supplier.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("version", sp.Version+1).
		Set("updated_at", sp.UpdatedAt).
		Set("updated_by", sp.UpdatedBy).
		Set("name", sp.Name).
		Set("contact_person", sp.ContactPerson).
		Set("phone", sp.Phone).
		Set("address", sp.Address).
		Set("active", sp.Active).
		Where(squirrel.Eq{"id": sp.ID, "version": sp.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict("supplier", sp.ID)
	}
	sp.Version++
	return nil
}

// GetByID retrieves a supplier by ID.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sp supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &sp, sql, args...); err != nil {
		return nil, notFoundOr(err, "supplier", supplierID)
	}
	return &sp, nil
}

// List retrieves suppliers, optionally only active ones.
func (r *SupplierRepo) List(ctx context.Context, activeOnly bool) ([]*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).From(suppliersTable).OrderBy("name")
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var suppliers []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &suppliers, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return suppliers, nil
}
