package sale

import (
	"context"
	"time"

	"stockpos/internal/core/id"
)

// Repository defines operations for sale documents.
type Repository interface {
	Create(ctx context.Context, doc *Sale) error
	GetByID(ctx context.Context, docID id.ID) (*Sale, error)
	GetByNumber(ctx context.Context, number string) (*Sale, error)

	// GetForUpdate retrieves the document header with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*Sale, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) ([]*Sale, error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	CashierID  *id.ID
	CustomerID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
