package receipt

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/tx"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/ledger"
	"stockpos/pkg/logger"
	"stockpos/pkg/numerator"
)

// ConfirmedHook is notified after a receipt commit so that derived data
// (average cost caches, audit trail) can react.
type ConfirmedHook func(ctx context.Context, doc *Receipt)

// Service provides business operations for goods receipt documents.
type Service struct {
	repo      Repository
	items     item.Repository
	ledger    *ledger.Service
	numerator *numerator.Service
	txManager tx.Manager

	onConfirmed []ConfirmedHook
}

// NewService creates a new goods receipt service.
func NewService(
	repo Repository,
	items item.Repository,
	ledgerSvc *ledger.Service,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		ledger:    ledgerSvc,
		numerator: num,
		txManager: txManager,
	}
}

// OnConfirmed registers a hook invoked after a successful confirmation.
func (s *Service) OnConfirmed(hook ConfirmedHook) {
	s.onConfirmed = append(s.onConfirmed, hook)
}

// SaveDraft persists a receipt in draft status with no stock effect.
func (s *Service) SaveDraft(ctx context.Context, principal security.Principal, doc *Receipt) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	doc.Status = StatusDraft
	doc.RecalculateTotal()

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignNumber(ctx, doc); err != nil {
			return err
		}
		if err := s.verifyItemsExist(ctx, doc.Lines); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "goods receipt saved as draft",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// Confirm applies a draft receipt to the stock ledger.
// The status change and every quantity increase commit together or not
// at all. Confirmation is final: a confirmed receipt is rejected.
func (s *Service) Confirm(ctx context.Context, principal security.Principal, docID id.ID) (*Receipt, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}

	var doc *Receipt
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.IsConfirmed() {
			return apperror.NewBusinessRule(
				apperror.CodeReceiptConfirmed,
				fmt.Sprintf("receipt %s is already confirmed", doc.Number))
		}

		doc.Lines, err = s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		return s.applyToLedger(ctx, principal, doc)
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmed(ctx, doc)

	logger.Info(ctx, "goods receipt confirmed",
		"id", doc.ID,
		"number", doc.Number,
		"total_cost", doc.TotalCost,
		"lines", len(doc.Lines))

	return doc, nil
}

// ConfirmNew creates and confirms a receipt in a single transaction.
func (s *Service) ConfirmNew(ctx context.Context, principal security.Principal, doc *Receipt) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignNumber(ctx, doc); err != nil {
			return err
		}
		doc.Status = StatusDraft
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.applyToLedger(ctx, principal, doc)
	})
	if err != nil {
		return err
	}

	s.notifyConfirmed(ctx, doc)

	logger.Info(ctx, "goods receipt created and confirmed",
		"id", doc.ID,
		"number", doc.Number,
		"total_cost", doc.TotalCost)

	return nil
}

// applyToLedger runs inside the confirmation transaction: every item is
// resolved, stock is increased per line, totals are recalculated and the
// status flips to confirmed. Any failure rolls the whole document back.
func (s *Service) applyToLedger(ctx context.Context, principal security.Principal, doc *Receipt) error {
	if err := s.verifyItemsExist(ctx, doc.Lines); err != nil {
		return err
	}

	for _, line := range doc.Lines {
		if _, err := s.ledger.Increase(ctx, line.ItemID, line.Quantity); err != nil {
			return err
		}
	}

	doc.RecalculateTotal()
	doc.Status = StatusConfirmed
	doc.Audit.Touch(principal.UserID, time.Now())

	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// assignNumber generates a document number unless one was supplied.
// Called inside the transaction so a rolled-back document does not
// consume a number.
func (s *Service) assignNumber(ctx context.Context, doc *Receipt) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig("GRN")
	number, err := s.numerator.GetNextNumber(ctx, cfg, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

func (s *Service) verifyItemsExist(ctx context.Context, lines []Line) error {
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}

	found, err := s.items.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve items: %w", err)
	}
	for _, line := range lines {
		if _, ok := found[line.ItemID]; !ok {
			return apperror.NewNotFound("item", line.ItemID)
		}
	}
	return nil
}

func (s *Service) notifyConfirmed(ctx context.Context, doc *Receipt) {
	for _, hook := range s.onConfirmed {
		hook(ctx, doc)
	}
}

// GetByID retrieves a receipt with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Receipt, error) {
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

// List retrieves receipts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Receipt, error) {
	return s.repo.List(ctx, filter)
}
