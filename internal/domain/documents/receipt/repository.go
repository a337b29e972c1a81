package receipt

import (
	"context"
	"time"

	"stockpos/internal/core/id"
)

// Repository defines operations for goods receipt documents.
type Repository interface {
	Create(ctx context.Context, doc *Receipt) error
	Update(ctx context.Context, doc *Receipt) error
	GetByID(ctx context.Context, docID id.ID) (*Receipt, error)
	GetByNumber(ctx context.Context, number string) (*Receipt, error)

	// GetForUpdate retrieves the document header with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*Receipt, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) ([]*Receipt, error)
}

// ListFilter for filtering goods receipts.
type ListFilter struct {
	SupplierID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
