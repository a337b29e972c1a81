package entity

import (
	"time"

	"stockpos/internal/core/id"
)

// Document is the base for business documents (receipts, sales, returns).
// Number is assigned from a named sequence, Date is the business date.
type Document struct {
	BaseEntity
	Audit

	Number string    `json:"number" db:"number"`
	Date   time.Time `json:"date" db:"date"`
}

// NewDocument creates a document base stamped with the given actor and time.
func NewDocument(by id.ID, at time.Time) Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		Audit: Audit{
			CreatedAt: at,
			CreatedBy: by,
			UpdatedAt: at,
			UpdatedBy: by,
		},
		Date: at,
	}
}
