package saleret

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/tx"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/ledger"
	"stockpos/pkg/logger"
	"stockpos/pkg/numerator"
)

// ReturnLine is one requested line of a return.
type ReturnLine struct {
	ItemID   id.ID
	Quantity int64
}

// ProcessInput is the full return request.
type ProcessInput struct {
	SaleID id.ID
	Reason *string
	Lines  []ReturnLine
}

// ProcessedHook is notified after a return commit.
type ProcessedHook func(ctx context.Context, doc *Return)

// Service provides business operations for sale returns.
type Service struct {
	repo      Repository
	sales     sale.Repository
	ledger    *ledger.Service
	numerator *numerator.Service
	txManager tx.Manager

	onProcessed []ProcessedHook
}

// OnProcessed registers a hook invoked after a successful return.
func (s *Service) OnProcessed(hook ProcessedHook) {
	s.onProcessed = append(s.onProcessed, hook)
}

// NewService creates a new sale return service.
func NewService(
	repo Repository,
	sales sale.Repository,
	ledgerSvc *ledger.Service,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		sales:     sales,
		ledger:    ledgerSvc,
		numerator: num,
		txManager: txManager,
	}
}

// Process records a return atomically: quantities are validated against
// the original sale minus anything already returned, stock is restored
// per line and the refund is computed at sale-time prices. Any failure
// rolls the whole return back.
func (s *Service) Process(ctx context.Context, principal security.Principal, input ProcessInput) (*Return, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	doc := New(principal.UserID, input.SaleID)
	doc.Reason = input.Reason

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// The row lock on the sale serializes concurrent returns for the
		// same sale: the second one sees the first one's returned
		// quantities instead of a stale snapshot.
		origSale, err := s.sales.GetForUpdate(ctx, input.SaleID)
		if err != nil {
			return err
		}

		// Numbering joins the transaction so a rejected return does not
		// consume a document number.
		cfg := numerator.DefaultConfig("RET")
		doc.Number, err = s.numerator.GetNextNumber(ctx, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}

		soldLines, err := s.sales.GetLines(ctx, origSale.ID)
		if err != nil {
			return fmt.Errorf("get sale lines: %w", err)
		}

		if err := s.buildLines(ctx, doc, soldLines, input.Lines); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		for _, line := range doc.Lines {
			if _, err := s.ledger.Increase(ctx, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}

		doc.RecalculateRefund()

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, hook := range s.onProcessed {
		hook(ctx, doc)
	}

	logger.Info(ctx, "sale return processed",
		"id", doc.ID,
		"number", doc.Number,
		"sale_id", doc.SaleID,
		"refund", doc.RefundAmount)

	return doc, nil
}

// buildLines matches requested lines against the sold lines and enforces
// the cumulative limit: sold quantity minus already returned quantity.
func (s *Service) buildLines(ctx context.Context, doc *Return, soldLines []sale.Line, requested []ReturnLine) error {
	soldByItem := make(map[id.ID]sale.Line, len(soldLines))
	for _, sl := range soldLines {
		// A sale can carry the same item on several lines; aggregate.
		if existing, ok := soldByItem[sl.ItemID]; ok {
			existing.Quantity += sl.Quantity
			soldByItem[sl.ItemID] = existing
		} else {
			soldByItem[sl.ItemID] = sl
		}
	}

	returned, err := s.repo.ReturnedQuantities(ctx, doc.SaleID)
	if err != nil {
		return fmt.Errorf("get returned quantities: %w", err)
	}

	doc.Lines = make([]Line, 0, len(requested))
	for i, req := range requested {
		if req.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}

		sold, ok := soldByItem[req.ItemID]
		if !ok {
			return apperror.NewValidation("item was not part of the sale").
				WithDetail("item_id", req.ItemID.String())
		}

		returnable := sold.Quantity - returned[req.ItemID]
		if req.Quantity > returnable {
			return apperror.NewOverReturn(req.ItemID.String(), req.Quantity, returnable)
		}

		doc.Lines = append(doc.Lines, Line{
			LineID:          id.New(),
			LineNo:          i + 1,
			ItemID:          req.ItemID,
			Quantity:        req.Quantity,
			UnitPriceAtSale: sold.UnitPrice,
		})
	}
	return nil
}

// GetByID retrieves a return with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Return, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	doc.Lines, err = s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return doc, nil
}

// List retrieves returns matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Return, error) {
	return s.repo.List(ctx, filter)
}
