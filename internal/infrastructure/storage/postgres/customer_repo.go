package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/customer"
)

const customersTable = "customers"

var customerColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"name", "phone", "email", "visit_count", "total_purchases",
}

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *TxManager) *CustomerRepo {
	return &CustomerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Insert(customersTable).
		Columns(customerColumns...).
		Values(
			c.ID, c.Version, c.CreatedAt, c.CreatedBy, c.UpdatedAt, c.UpdatedBy,
			c.Name, c.Phone, c.Email, c.VisitCount, c.TotalPurchases,
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

// Update modifies a customer with optimistic locking. Statistics fields
// are excluded: IncrementStats owns them.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Update(customersTable).
		Set("version", c.Version+1).
		Set("updated_at", c.UpdatedAt).
		Set("updated_by", c.UpdatedBy).
		Set("name", c.Name).
		Set("phone", c.Phone).
		Set("email", c.Email).
		Where(squirrel.Eq{"id": c.ID, "version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict("customer", c.ID)
	}
	c.Version++
	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).From(customersTable).
		Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		return nil, notFoundOr(err, "customer", customerID)
	}
	return &c, nil
}

// GetByPhone retrieves a customer by phone.
func (r *CustomerRepo) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).From(customersTable).
		Where(squirrel.Eq{"phone": phone})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		return nil, notFoundOr(err, "customer", phone)
	}
	return &c, nil
}

// List retrieves customers matching the filter.
func (r *CustomerRepo) List(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).From(customersTable).OrderBy("name")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
		})
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

	var customers []*customer.Customer
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return customers, nil
}

// IncrementStats bumps visit count and total purchases atomically.
func (r *CustomerRepo) IncrementStats(ctx context.Context, customerID id.ID, amount types.Money) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE customers
		    SET visit_count = visit_count + 1,
		        total_purchases = total_purchases + $2,
		        updated_at = now()
		  WHERE id = $1`, customerID, amount)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID)
	}
	return nil
}
