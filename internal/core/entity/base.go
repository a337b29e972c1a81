// Package entity provides base types embedded by catalog and document models.
package entity

import (
	"time"

	"stockpos/internal/core/id"
)

// BaseEntity is embedded by every persisted record.
// Version implements optimistic locking: updates must match the stored
// version and increment it.
type BaseEntity struct {
	ID      id.ID `json:"id" db:"id"`
	Version int   `json:"version" db:"version"`
}

// NewBaseEntity creates a base with a fresh UUIDv7 and version 1.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Audit carries creation and modification metadata.
type Audit struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy id.ID     `json:"created_by" db:"created_by"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy id.ID     `json:"updated_by" db:"updated_by"`
}

// Touch updates the modification metadata.
func (a *Audit) Touch(by id.ID, at time.Time) {
	a.UpdatedAt = at
	a.UpdatedBy = by
}
