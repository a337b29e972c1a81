package memory

import (
	"context"
	"sort"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/documents/saleret"
	"stockpos/internal/domain/valuation"
)

// --- Goods receipts ---

var (
	_ receipt.Repository   = (*ReceiptRepo)(nil)
	_ valuation.Repository = (*ReceiptRepo)(nil)
)

// ReceiptRepo is the in-memory goods receipt store. It also serves the
// cost basis aggregate for valuation.
type ReceiptRepo struct {
	store *Store
}

// Receipts returns the receipt repository view of the store.
func (s *Store) Receipts() *ReceiptRepo { return &ReceiptRepo{store: s} }

func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Receipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *doc
	cp.Lines = nil
	r.store.receipts[doc.ID] = &cp
	return nil
}

func (r *ReceiptRepo) Update(ctx context.Context, doc *receipt.Receipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.receipts[doc.ID]
	if !ok {
		return apperror.NewNotFound("goods receipt", doc.ID)
	}
	if current.Version != doc.Version {
		return apperror.NewConflict("goods receipt was modified concurrently")
	}
	cp := *doc
	cp.Lines = nil
	cp.Version = current.Version + 1
	r.store.receipts[doc.ID] = &cp
	doc.Version = cp.Version
	return nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	doc, ok := r.store.receipts[docID]
	if !ok {
		return nil, apperror.NewNotFound("goods receipt", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *ReceiptRepo) GetByNumber(ctx context.Context, number string) (*receipt.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, doc := range r.store.receipts {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("goods receipt", number)
}

func (r *ReceiptRepo) GetForUpdate(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	return r.GetByID(ctx, docID)
}

func (r *ReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]receipt.Line, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	lines := r.store.receiptLines[docID]
	out := make([]receipt.Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *ReceiptRepo) SaveLines(ctx context.Context, docID id.ID, lines []receipt.Line) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := make([]receipt.Line, len(lines))
	copy(cp, lines)
	r.store.receiptLines[docID] = cp
	return nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) ([]*receipt.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*receipt.Receipt
	for _, doc := range r.store.receipts {
		if filter.SupplierID != nil && doc.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && doc.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && doc.Date.After(*filter.DateTo) {
			continue
		}
		cp := *doc
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

// CostBasis sums cost and quantity over confirmed receipt lines for an
// item.
func (r *ReceiptRepo) CostBasis(ctx context.Context, itemID id.ID) (valuation.CostBasis, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	basis := valuation.CostBasis{TotalCost: types.Zero()}
	for docID, lines := range r.store.receiptLines {
		doc, ok := r.store.receipts[docID]
		if !ok || doc.Status != receipt.StatusConfirmed {
			continue
		}
		for _, line := range lines {
			if line.ItemID != itemID {
				continue
			}
			basis.TotalCost = basis.TotalCost.Add(line.Amount())
			basis.TotalQuantity += line.Quantity
		}
	}
	return basis, nil
}

// --- Sales ---

var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo is the in-memory sale store.
type SaleRepo struct {
	store *Store
}

// Sales returns the sale repository view of the store.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{store: s} }

func (r *SaleRepo) Create(ctx context.Context, doc *sale.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *doc
	cp.Lines = nil
	r.store.sales[doc.ID] = &cp
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, docID id.ID) (*sale.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	doc, ok := r.store.sales[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *SaleRepo) GetByNumber(ctx context.Context, number string) (*sale.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, doc := range r.store.sales {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, docID id.ID) (*sale.Sale, error) {
	return r.GetByID(ctx, docID)
}

func (r *SaleRepo) GetLines(ctx context.Context, docID id.ID) ([]sale.Line, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	lines := r.store.saleLines[docID]
	out := make([]sale.Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *SaleRepo) SaveLines(ctx context.Context, docID id.ID, lines []sale.Line) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := make([]sale.Line, len(lines))
	copy(cp, lines)
	r.store.saleLines[docID] = cp
	return nil
}

func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*sale.Sale
	for _, doc := range r.store.sales {
		if filter.CashierID != nil && doc.CashierID != *filter.CashierID {
			continue
		}
		if filter.CustomerID != nil && (doc.CustomerID == nil || *doc.CustomerID != *filter.CustomerID) {
			continue
		}
		if filter.DateFrom != nil && doc.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && doc.Date.After(*filter.DateTo) {
			continue
		}
		cp := *doc
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

// --- Returns ---

var _ saleret.Repository = (*ReturnRepo)(nil)

// ReturnRepo is the in-memory sale return store.
type ReturnRepo struct {
	store *Store
}

// Returns returns the return repository view of the store.
func (s *Store) Returns() *ReturnRepo { return &ReturnRepo{store: s} }

func (r *ReturnRepo) Create(ctx context.Context, doc *saleret.Return) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *doc
	cp.Lines = nil
	r.store.returns[doc.ID] = &cp
	return nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, docID id.ID) (*saleret.Return, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	doc, ok := r.store.returns[docID]
	if !ok {
		return nil, apperror.NewNotFound("return", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *ReturnRepo) GetLines(ctx context.Context, docID id.ID) ([]saleret.Line, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	lines := r.store.returnLines[docID]
	out := make([]saleret.Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *ReturnRepo) SaveLines(ctx context.Context, docID id.ID, lines []saleret.Line) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := make([]saleret.Line, len(lines))
	copy(cp, lines)
	r.store.returnLines[docID] = cp
	return nil
}

func (r *ReturnRepo) ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	totals := make(map[id.ID]int64)
	for docID, lines := range r.store.returnLines {
		doc, ok := r.store.returns[docID]
		if !ok || doc.SaleID != saleID {
			continue
		}
		for _, line := range lines {
			totals[line.ItemID] += line.Quantity
		}
	}
	return totals, nil
}

func (r *ReturnRepo) List(ctx context.Context, filter saleret.ListFilter) ([]*saleret.Return, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*saleret.Return
	for _, doc := range r.store.returns {
		if filter.SaleID != nil && doc.SaleID != *filter.SaleID {
			continue
		}
		if filter.DateFrom != nil && doc.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && doc.Date.After(*filter.DateTo) {
			continue
		}
		cp := *doc
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return paginate(result, filter.Limit, filter.Offset), nil
}
