package memory

import (
	"context"
	"sort"
	"strings"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/ledger"
)

// --- Items ---

var (
	_ item.Repository   = (*ItemRepo)(nil)
	_ ledger.Repository = (*ItemRepo)(nil)
)

// ItemRepo is the in-memory item catalog. It also serves stock
// quantities since quantity lives on the item row.
type ItemRepo struct {
	store *Store
}

// Items returns the item repository view of the store.
func (s *Store) Items() *ItemRepo { return &ItemRepo{store: s} }

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *it
	r.store.items[it.ID] = &cp
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.items[it.ID]
	if !ok {
		return apperror.NewNotFound("item", it.ID)
	}
	cp := *it
	cp.Version = current.Version + 1
	// Quantity is owned by the ledger, not the catalog.
	cp.QuantityOnHand = current.QuantityOnHand
	r.store.items[it.ID] = &cp
	it.Version = cp.Version
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	it, ok := r.store.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*item.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, it := range r.store.items {
		if it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", sku)
}

func (r *ItemRepo) GetByBarcode(ctx context.Context, barcode string) (*item.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, it := range r.store.items {
		if it.Barcode != nil && *it.Barcode == barcode {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", barcode)
}

func (r *ItemRepo) List(ctx context.Context, filter item.Filter) ([]*item.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*item.Item
	for _, it := range r.store.items {
		if filter.Active != nil && it.Active != *filter.Active {
			continue
		}
		if filter.Category != nil && (it.Category == nil || *it.Category != *filter.Category) {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			barcode := ""
			if it.Barcode != nil {
				barcode = *it.Barcode
			}
			if !strings.Contains(strings.ToLower(it.Name), q) &&
				!strings.Contains(strings.ToLower(it.SKU), q) &&
				!strings.Contains(strings.ToLower(barcode), q) {
				continue
			}
		}
		cp := *it
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *ItemRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*item.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make(map[id.ID]*item.Item, len(ids))
	for _, itemID := range ids {
		if it, ok := r.store.items[itemID]; ok {
			cp := *it
			result[itemID] = &cp
		}
	}
	return result, nil
}

func (r *ItemRepo) GetQuantity(ctx context.Context, itemID id.ID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	it, ok := r.store.items[itemID]
	if !ok {
		return 0, apperror.NewNotFound("item", itemID)
	}
	return it.QuantityOnHand, nil
}

func (r *ItemRepo) GetQuantityForUpdate(ctx context.Context, itemID id.ID) (int64, error) {
	return r.GetQuantity(ctx, itemID)
}

func (r *ItemRepo) AddQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	it, ok := r.store.items[itemID]
	if !ok {
		return 0, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	cp.QuantityOnHand += delta
	r.store.items[itemID] = &cp
	return cp.QuantityOnHand, nil
}

// --- Customers ---

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo is the in-memory customer catalog.
type CustomerRepo struct {
	store *Store
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{store: s} }

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.customers[c.ID]
	if !ok {
		return apperror.NewNotFound("customer", c.ID)
	}
	cp := *c
	cp.Version = current.Version + 1
	r.store.customers[c.ID] = &cp
	c.Version = cp.Version
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepo) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.customers {
		if c.Phone != nil && *c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("customer", phone)
}

func (r *CustomerRepo) List(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*customer.Customer
	for _, c := range r.store.customers {
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			phone := ""
			if c.Phone != nil {
				phone = *c.Phone
			}
			if !strings.Contains(strings.ToLower(c.Name), q) &&
				!strings.Contains(phone, filter.Query) {
				continue
			}
		}
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *CustomerRepo) IncrementStats(ctx context.Context, customerID id.ID, amount types.Money) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID)
	}
	cp := *c
	cp.VisitCount++
	cp.TotalPurchases = cp.TotalPurchases.Add(amount)
	r.store.customers[customerID] = &cp
	return nil
}

// --- Suppliers ---

var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo is the in-memory supplier catalog.
type SupplierRepo struct {
	store *Store
}

// Suppliers returns the supplier repository view of the store.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{store: s} }

func (r *SupplierRepo) Create(ctx context.Context, sp *supplier.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *sp
	r.store.suppliers[sp.ID] = &cp
	return nil
}

func (r *SupplierRepo) Update(ctx context.Context, sp *supplier.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.suppliers[sp.ID]
	if !ok {
		return apperror.NewNotFound("supplier", sp.ID)
	}
	cp := *sp
	cp.Version = current.Version + 1
	r.store.suppliers[sp.ID] = &cp
	sp.Version = cp.Version
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sp, ok := r.store.suppliers[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID)
	}
	cp := *sp
	return &cp, nil
}

func (r *SupplierRepo) List(ctx context.Context, activeOnly bool) ([]*supplier.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*supplier.Supplier
	for _, sp := range r.store.suppliers {
		if activeOnly && !sp.Active {
			continue
		}
		cp := *sp
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
