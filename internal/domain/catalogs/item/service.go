package item

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/pkg/logger"
	"stockpos/pkg/numerator"
)

// Service provides business logic for the item catalog.
type Service struct {
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new item catalog service.
func NewService(repo Repository, num *numerator.Service) *Service {
	return &Service{repo: repo, numerator: num}
}

// Create registers a new item. SKU is generated when empty.
func (s *Service) Create(ctx context.Context, principal security.Principal, it *Item) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if it.SKU == "" {
		cfg := numerator.DefaultConfig("ITM")
		sku, err := s.numerator.GetNextNumber(ctx, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("generate sku: %w", err)
		}
		it.SKU = sku
	} else if err := s.checkSKUFree(ctx, it.SKU, it.ID); err != nil {
		return err
	}

	now := time.Now()
	it.Audit.CreatedAt = now
	it.Audit.CreatedBy = principal.UserID
	it.Audit.Touch(principal.UserID, now)

	if err := s.repo.Create(ctx, it); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	logger.Info(ctx, "item created", "item_id", it.ID, "sku", it.SKU)
	return nil
}

// Update modifies catalog attributes. Stock level changes are rejected:
// quantity is owned by the ledger.
func (s *Service) Update(ctx context.Context, principal security.Principal, it *Item) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := it.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, it.ID)
	if err != nil {
		return err
	}
	if it.QuantityOnHand != current.QuantityOnHand {
		return apperror.NewValidation("quantity cannot be edited directly, use stock documents")
	}
	if err := s.checkSKUFree(ctx, it.SKU, it.ID); err != nil {
		return err
	}

	it.Audit.Touch(principal.UserID, time.Now())

	if err := s.repo.Update(ctx, it); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	logger.Info(ctx, "item updated", "item_id", it.ID)
	return nil
}

// Get retrieves an item by ID.
func (s *Service) Get(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// FindByCode looks an item up by SKU first, then barcode.
func (s *Service) FindByCode(ctx context.Context, code string) (*Item, error) {
	it, err := s.repo.GetBySKU(ctx, code)
	if err == nil {
		return it, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}
	return s.repo.GetByBarcode(ctx, code)
}

// List returns items matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Item, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) checkSKUFree(ctx context.Context, sku string, excludeID id.ID) error {
	existing, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return apperror.NewDuplicate("item", "sku", sku)
	}
	return nil
}
