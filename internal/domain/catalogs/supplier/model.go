// Package supplier provides the supplier catalog referenced by goods
// receipt documents.
package supplier

import (
	"context"
	"strings"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
)

// Supplier represents a goods supplier.
type Supplier struct {
	entity.BaseEntity
	entity.Audit

	Name          string  `db:"name" json:"name"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Address       *string `db:"address" json:"address,omitempty"`
	Active        bool    `db:"active" json:"active"`
}

// New creates a Supplier with required fields.
func New(name string) *Supplier {
	return &Supplier{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Active:     true,
	}
}

// Validate checks invariants before persistence.
func (s *Supplier) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "name")
	}
	return nil
}
