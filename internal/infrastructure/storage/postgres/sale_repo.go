package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/id"
	"stockpos/internal/domain/documents/sale"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

var saleColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"number", "date", "cashier_id", "customer_id", "payment_type",
	"subtotal", "discount_amount", "total_amount",
}

var saleLineColumns = []string{
	"line_id", "line_no", "item_id", "quantity", "unit_price",
}

var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a sale header.
func (r *SaleRepo) Create(ctx context.Context, doc *sale.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.CreatedBy, doc.UpdatedAt, doc.UpdatedBy,
			doc.Number, doc.Date, doc.CashierID, doc.CustomerID, doc.PaymentType,
			doc.Subtotal, doc.DiscountAmount, doc.TotalAmount,
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

// GetByID retrieves a sale header.
func (r *SaleRepo) GetByID(ctx context.Context, docID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID, false)
}

// GetByNumber retrieves a sale header by document number.
func (r *SaleRepo) GetByNumber(ctx context.Context, number string) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number, false)
}

// GetForUpdate retrieves a sale header with a row lock.
func (r *SaleRepo) GetForUpdate(ctx context.Context, docID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID, true)
}

func (r *SaleRepo) getOne(ctx context.Context, where squirrel.Eq, key any, lock bool) (*sale.Sale, error) {
	q := r.builder.Select(saleColumns...).From(salesTable).Where(where)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var doc sale.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		return nil, notFoundOr(err, "sale", key)
	}
	return &doc, nil
}

// GetLines retrieves sale lines ordered by line number.
func (r *SaleRepo) GetLines(ctx context.Context, docID id.ID) ([]sale.Line, error) {
	q := r.builder.Select(saleLineColumns...).From(saleLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var lines []sale.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return lines, nil
}

// SaveLines replaces the table part of a sale.
func (r *SaleRepo) SaveLines(ctx context.Context, docID id.ID, lines []sale.Line) error {
	querier := r.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx,
		`DELETE FROM doc_sale_lines WHERE document_id = $1`, docID); err != nil {
		return translateError(err)
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(saleLinesTable).
		Columns("line_id", "document_id", "line_no", "item_id", "quantity", "unit_price")
	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ItemID, line.Quantity, line.UnitPrice)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return translateError(err)
	}
	return nil
}

// List retrieves sales matching the filter.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	q := r.builder.Select(saleColumns...).From(salesTable).
		OrderBy("date DESC, number DESC")

	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *filter.CashierID})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
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

	var docs []*sale.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return docs, nil
}
