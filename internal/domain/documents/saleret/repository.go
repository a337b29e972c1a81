package saleret

import (
	"context"
	"time"

	"stockpos/internal/core/id"
)

// Repository defines operations for sale return documents.
type Repository interface {
	Create(ctx context.Context, doc *Return) error
	GetByID(ctx context.Context, docID id.ID) (*Return, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// ReturnedQuantities sums previously returned quantities per item
	// for a sale. Used to enforce the cumulative return limit.
	ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error)

	List(ctx context.Context, filter ListFilter) ([]*Return, error)
}

// ListFilter for filtering returns.
type ListFilter struct {
	SaleID   *id.ID
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
