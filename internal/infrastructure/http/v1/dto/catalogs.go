package dto

import (
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
)

// --- Items ---

// CreateItemRequest creates a stock item. SKU is generated when empty.
type CreateItemRequest struct {
	SKU          string      `json:"sku,omitempty"`
	Barcode      *string     `json:"barcode,omitempty"`
	Name         string      `json:"name" binding:"required"`
	Category     *string     `json:"category,omitempty"`
	SellingPrice types.Money `json:"sellingPrice" binding:"required"`
	ReorderLevel int64       `json:"reorderLevel,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.New(r.SKU, r.Name, r.SellingPrice)
	it.Barcode = r.Barcode
	it.Category = r.Category
	it.ReorderLevel = r.ReorderLevel
	return it
}

// UpdateItemRequest updates catalog fields. Quantity is not accepted;
// it changes only through stock documents.
type UpdateItemRequest struct {
	Barcode      *string      `json:"barcode,omitempty"`
	Name         *string      `json:"name,omitempty"`
	Category     *string      `json:"category,omitempty"`
	SellingPrice *types.Money `json:"sellingPrice,omitempty"`
	ReorderLevel *int64       `json:"reorderLevel,omitempty"`
	Active       *bool        `json:"active,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.Barcode != nil {
		it.Barcode = r.Barcode
	}
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.Category != nil {
		it.Category = r.Category
	}
	if r.SellingPrice != nil {
		it.SellingPrice = *r.SellingPrice
	}
	if r.ReorderLevel != nil {
		it.ReorderLevel = *r.ReorderLevel
	}
	if r.Active != nil {
		it.Active = *r.Active
	}
}

// ItemResponse is the API view of a stock item.
type ItemResponse struct {
	ID             string      `json:"id"`
	SKU            string      `json:"sku"`
	Barcode        *string     `json:"barcode,omitempty"`
	Name           string      `json:"name"`
	Category       *string     `json:"category,omitempty"`
	SellingPrice   types.Money `json:"sellingPrice"`
	QuantityOnHand int64       `json:"quantityOnHand"`
	ReorderLevel   int64       `json:"reorderLevel"`
	Active         bool        `json:"active"`
	LowStock       bool        `json:"lowStock"`
	Version        int         `json:"version"`
}

// AvailabilityResponse is the pre-cart stock lookup result.
type AvailabilityResponse struct {
	ItemID         string `json:"itemId"`
	QuantityOnHand int64  `json:"quantityOnHand"`
}

// FromItem converts an item to its API view.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:             it.ID.String(),
		SKU:            it.SKU,
		Barcode:        it.Barcode,
		Name:           it.Name,
		Category:       it.Category,
		SellingPrice:   it.SellingPrice,
		QuantityOnHand: it.QuantityOnHand,
		ReorderLevel:   it.ReorderLevel,
		Active:         it.Active,
		LowStock:       it.IsLowStock(),
		Version:        it.Version,
	}
}

// FromItems converts a list of items.
func FromItems(items []*item.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = FromItem(it)
	}
	return out
}

// --- Customers ---

// CreateCustomerRequest creates a customer.
type CreateCustomerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.New(r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	return c
}

// UpdateCustomerRequest updates customer contact fields.
type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
}

// CustomerResponse is the API view of a customer.
type CustomerResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Phone          *string     `json:"phone,omitempty"`
	Email          *string     `json:"email,omitempty"`
	VisitCount     int64       `json:"visitCount"`
	TotalPurchases types.Money `json:"totalPurchases"`
	Version        int         `json:"version"`
}

// FromCustomer converts a customer to its API view.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Phone:          c.Phone,
		Email:          c.Email,
		VisitCount:     c.VisitCount,
		TotalPurchases: c.TotalPurchases,
		Version:        c.Version,
	}
}

// FromCustomers converts a list of customers.
func FromCustomers(customers []*customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = FromCustomer(c)
	}
	return out
}

// --- Suppliers ---

// CreateSupplierRequest creates a supplier.
type CreateSupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	sp := supplier.New(r.Name)
	sp.ContactPerson = r.ContactPerson
	sp.Phone = r.Phone
	sp.Address = r.Address
	return sp
}

// UpdateSupplierRequest updates supplier fields.
type UpdateSupplierRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateSupplierRequest) ApplyTo(sp *supplier.Supplier) {
	if r.Name != nil {
		sp.Name = *r.Name
	}
	if r.ContactPerson != nil {
		sp.ContactPerson = r.ContactPerson
	}
	if r.Phone != nil {
		sp.Phone = r.Phone
	}
	if r.Address != nil {
		sp.Address = r.Address
	}
	if r.Active != nil {
		sp.Active = *r.Active
	}
}

// SupplierResponse is the API view of a supplier.
type SupplierResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	Active        bool    `json:"active"`
	Version       int     `json:"version"`
}

// FromSupplier converts a supplier to its API view.
func FromSupplier(sp *supplier.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            sp.ID.String(),
		Name:          sp.Name,
		ContactPerson: sp.ContactPerson,
		Phone:         sp.Phone,
		Address:       sp.Address,
		Active:        sp.Active,
		Version:       sp.Version,
	}
}

// FromSuppliers converts a list of suppliers.
func FromSuppliers(suppliers []*supplier.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i, sp := range suppliers {
		out[i] = FromSupplier(sp)
	}
	return out
}
