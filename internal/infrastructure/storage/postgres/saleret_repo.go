package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/id"
	"stockpos/internal/domain/documents/saleret"
)

const (
	returnsTable     = "doc_returns"
	returnLinesTable = "doc_return_lines"
)

var returnColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"number", "date", "sale_id", "reason", "refund_amount",
}

var returnLineColumns = []string{
	"line_id", "line_no", "item_id", "quantity", "unit_price_at_sale",
}

var _ saleret.Repository = (*ReturnRepo)(nil)

// ReturnRepo implements saleret.Repository.
type ReturnRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReturnRepo creates a new sale return repository.
func NewReturnRepo(txm *TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a return header.
func (r *ReturnRepo) Create(ctx context.Context, doc *saleret.Return) error {
	q := r.builder.Insert(returnsTable).
		Columns(returnColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.CreatedBy, doc.UpdatedAt, doc.UpdatedBy,
			doc.Number, doc.Date, doc.SaleID, doc.Reason, doc.RefundAmount,
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

// GetByID retrieves a return header.
func (r *ReturnRepo) GetByID(ctx context.Context, docID id.ID) (*saleret.Return, error) {
	q := r.builder.Select(returnColumns...).From(returnsTable).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var doc saleret.Return
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		return nil, notFoundOr(err, "return", docID)
	}
	return &doc, nil
}

// GetLines retrieves return lines ordered by line number.
func (r *ReturnRepo) GetLines(ctx context.Context, docID id.ID) ([]saleret.Line, error) {
	q := r.builder.Select(returnLineColumns...).From(returnLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var lines []saleret.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return lines, nil
}

// SaveLines replaces the table part of a return.
func (r *ReturnRepo) SaveLines(ctx context.Context, docID id.ID, lines []saleret.Line) error {
	querier := r.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx,
		`DELETE FROM doc_return_lines WHERE document_id = $1`, docID); err != nil {
		return translateError(err)
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(returnLinesTable).
		Columns("line_id", "document_id", "line_no", "item_id", "quantity", "unit_price_at_sale")
	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ItemID, line.Quantity, line.UnitPriceAtSale)
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

// ReturnedQuantities sums previously returned quantities per item for a sale.
func (r *ReturnRepo) ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error) {
	var rows []struct {
		ItemID   id.ID `db:"item_id"`
		Quantity int64 `db:"quantity"`
	}

	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, `
		SELECT l.item_id, SUM(l.quantity) AS quantity
		  FROM doc_return_lines l
		  JOIN doc_returns d ON d.id = l.document_id
		 WHERE d.sale_id = $1
		 GROUP BY l.item_id`, saleID)
	if err != nil {
		return nil, translateError(err)
	}

	result := make(map[id.ID]int64, len(rows))
	for _, row := range rows {
		result[row.ItemID] = row.Quantity
	}
	return result, nil
}

// List retrieves returns matching the filter.
func (r *ReturnRepo) List(ctx context.Context, filter saleret.ListFilter) ([]*saleret.Return, error) {
	q := r.builder.Select(returnColumns...).From(returnsTable).
		OrderBy("date DESC, number DESC")

	if filter.SaleID != nil {
		q = q.Where(squirrel.Eq{"sale_id": *filter.SaleID})
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

	var docs []*saleret.Return
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return docs, nil
}
