package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/valuation"
)

const (
	receiptsTable     = "doc_receipts"
	receiptLinesTable = "doc_receipt_lines"
)

var receiptColumns = []string{
	"id", "version", "created_at", "created_by", "updated_at", "updated_by",
	"number", "date", "supplier_id", "invoice_ref", "status", "total_cost",
}

var receiptLineColumns = []string{
	"line_id", "line_no", "item_id", "quantity", "unit_cost",
}

var _ receipt.Repository = (*ReceiptRepo)(nil)
var _ valuation.Repository = (*ReceiptRepo)(nil)

// ReceiptRepo implements receipt.Repository and serves the valuation
// cost basis from confirmed receipt lines.
type ReceiptRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReceiptRepo creates a new goods receipt repository.
func NewReceiptRepo(txm *TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a receipt header.
func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Receipt) error {
	q := r.builder.Insert(receiptsTable).
		Columns(receiptColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.CreatedBy, doc.UpdatedAt, doc.UpdatedBy,
			doc.Number, doc.Date, doc.SupplierID, doc.InvoiceRef, doc.Status, doc.TotalCost,
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

// Update modifies a receipt header with optimistic locking.
func (r *ReceiptRepo) Update(ctx context.Context, doc *receipt.Receipt) error {
	q := r.builder.Update(receiptsTable).
		Set("version", doc.Version+1).
		Set("updated_at", doc.UpdatedAt).
		Set("updated_by", doc.UpdatedBy).
		Set("date", doc.Date).
		Set("supplier_id", doc.SupplierID).
		Set("invoice_ref", doc.InvoiceRef).
		Set("status", doc.Status).
		Set("total_cost", doc.TotalCost).
		Where(squirrel.Eq{"id": doc.ID, "version": doc.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict("receipt", doc.ID)
	}
	doc.Version++
	return nil
}

// GetByID retrieves a receipt header.
func (r *ReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID, false)
}

// GetByNumber retrieves a receipt header by document number.
func (r *ReceiptRepo) GetByNumber(ctx context.Context, number string) (*receipt.Receipt, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number, false)
}

// GetForUpdate retrieves a receipt header with a row lock.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID, true)
}

func (r *ReceiptRepo) getOne(ctx context.Context, where squirrel.Eq, key any, lock bool) (*receipt.Receipt, error) {
	q := r.builder.Select(receiptColumns...).From(receiptsTable).Where(where)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var doc receipt.Receipt
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		return nil, notFoundOr(err, "receipt", key)
	}
	return &doc, nil
}

// GetLines retrieves receipt lines ordered by line number.
func (r *ReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]receipt.Line, error) {
	q := r.builder.Select(receiptLineColumns...).From(receiptLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var lines []receipt.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return lines, nil
}

// SaveLines replaces the table part of a receipt.
func (r *ReceiptRepo) SaveLines(ctx context.Context, docID id.ID, lines []receipt.Line) error {
	querier := r.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx,
		`DELETE FROM doc_receipt_lines WHERE document_id = $1`, docID); err != nil {
		return translateError(err)
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(receiptLinesTable).
		Columns("line_id", "document_id", "line_no", "item_id", "quantity", "unit_cost")
	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ItemID, line.Quantity, line.UnitCost)
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

// List retrieves receipts matching the filter.
func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) ([]*receipt.Receipt, error) {
	q := r.builder.Select(receiptColumns...).From(receiptsTable).
		OrderBy("date DESC, number DESC")

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
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

	var docs []*receipt.Receipt
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, translateError(err)
	}
	return docs, nil
}

// CostBasis aggregates confirmed receipt history for one item.
func (r *ReceiptRepo) CostBasis(ctx context.Context, itemID id.ID) (valuation.CostBasis, error) {
	var row struct {
		TotalCost     types.Money `db:"total_cost"`
		TotalQuantity int64       `db:"total_quantity"`
	}

	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, `
		SELECT COALESCE(SUM(l.unit_cost * l.quantity), 0) AS total_cost,
		       COALESCE(SUM(l.quantity), 0)               AS total_quantity
		  FROM doc_receipt_lines l
		  JOIN doc_receipts d ON d.id = l.document_id
		 WHERE l.item_id = $1
		   AND d.status = $2`, itemID, receipt.StatusConfirmed)
	if err != nil {
		return valuation.CostBasis{}, translateError(err)
	}

	return valuation.CostBasis{
		TotalCost:     row.TotalCost,
		TotalQuantity: row.TotalQuantity,
	}, nil
}
