package sale

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/tx"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/ledger"
	"stockpos/pkg/logger"
	"stockpos/pkg/numerator"
)

// CheckoutLine is one requested line of a checkout. Prices are never
// accepted from the caller; they are resolved from the catalog.
type CheckoutLine struct {
	ItemID   id.ID
	Quantity int64
}

// CheckoutInput is the full checkout request.
type CheckoutInput struct {
	CustomerID     *id.ID
	PaymentType    PaymentType
	DiscountAmount types.Money
	Lines          []CheckoutLine
}

// CheckedOutHook is notified after a checkout commit.
type CheckedOutHook func(ctx context.Context, doc *Sale)

// Service provides business operations for sales.
type Service struct {
	repo      Repository
	items     item.Repository
	customers customer.Repository
	ledger    *ledger.Service
	numerator *numerator.Service
	txManager tx.Manager

	onCheckedOut []CheckedOutHook
}

// OnCheckedOut registers a hook invoked after a successful checkout.
func (s *Service) OnCheckedOut(hook CheckedOutHook) {
	s.onCheckedOut = append(s.onCheckedOut, hook)
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	items item.Repository,
	customers customer.Repository,
	ledgerSvc *ledger.Service,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		customers: customers,
		ledger:    ledgerSvc,
		numerator: num,
		txManager: txManager,
	}
}

// Checkout processes a sale atomically: availability is validated for
// every line under row locks before any stock is deducted, so a shortage
// on the last line leaves the first line untouched.
func (s *Service) Checkout(ctx context.Context, principal security.Principal, input CheckoutInput) (*Sale, error) {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	doc := New(principal.UserID, input.PaymentType)
	doc.CustomerID = input.CustomerID
	doc.DiscountAmount = input.DiscountAmount

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Numbering joins the transaction so a failed checkout does not
		// consume a document number.
		cfg := numerator.DefaultConfig("SAL")
		number, err := s.numerator.GetNextNumber(ctx, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.snapshotPrices(ctx, doc, input.Lines); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		demands := make([]ledger.Demand, 0, len(doc.Lines))
		for _, line := range doc.Lines {
			demands = append(demands, ledger.Demand{ItemID: line.ItemID, Quantity: line.Quantity})
		}
		if err := s.ledger.CheckAvailability(ctx, demands); err != nil {
			return err
		}

		for _, line := range doc.Lines {
			if _, err := s.ledger.Decrease(ctx, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}

		doc.RecalculateTotals()

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		if doc.CustomerID != nil {
			if _, err := s.customers.GetByID(ctx, *doc.CustomerID); err != nil {
				return err
			}
			if err := s.customers.IncrementStats(ctx, *doc.CustomerID, doc.TotalAmount); err != nil {
				return fmt.Errorf("update customer stats: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, hook := range s.onCheckedOut {
		hook(ctx, doc)
	}

	logger.Info(ctx, "sale completed",
		"id", doc.ID,
		"number", doc.Number,
		"cashier_id", doc.CashierID,
		"total", doc.TotalAmount,
		"lines", len(doc.Lines))

	return doc, nil
}

// snapshotPrices resolves every requested item and captures its current
// selling price on the line. Requests for unknown or inactive items fail
// the whole checkout.
func (s *Service) snapshotPrices(ctx context.Context, doc *Sale, lines []CheckoutLine) error {
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}

	found, err := s.items.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve items: %w", err)
	}

	doc.Lines = make([]Line, 0, len(lines))
	for i, line := range lines {
		it, ok := found[line.ItemID]
		if !ok {
			return apperror.NewNotFound("item", line.ItemID)
		}
		if !it.Active {
			return apperror.NewValidation("item is not for sale").
				WithDetail("item_id", line.ItemID.String())
		}
		doc.Lines = append(doc.Lines, Line{
			LineID:    id.New(),
			LineNo:    i + 1,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: it.SellingPrice,
		})
	}
	return nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
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

// List retrieves sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.List(ctx, filter)
}
