// Package customer provides the customer catalog.
// Customers are optional on sales; when attached, checkout updates
// their visit and purchase statistics.
package customer

import (
	"context"
	"regexp"
	"strings"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/entity"
	"stockpos/internal/core/types"
)

var (
	phoneRE = regexp.MustCompile(`^\+?[\d\s-]{7,20}$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Customer represents a registered buyer.
type Customer struct {
	entity.BaseEntity
	entity.Audit

	Name  string  `db:"name" json:"name"`
	Phone *string `db:"phone" json:"phone,omitempty"`
	Email *string `db:"email" json:"email,omitempty"`

	// VisitCount is incremented on every completed checkout.
	VisitCount int64 `db:"visit_count" json:"visitCount"`

	// TotalPurchases accumulates sale totals across visits.
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
}

// New creates a Customer with required fields.
func New(name string) *Customer {
	return &Customer{
		BaseEntity:     entity.NewBaseEntity(),
		Name:           name,
		TotalPurchases: types.Zero(),
	}
}

// Validate checks invariants before persistence.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	if c.Phone != nil && *c.Phone != "" && !phoneRE.MatchString(*c.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}
	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	return nil
}
