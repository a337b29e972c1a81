package ledger

import (
	"context"
	"fmt"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/pkg/logger"
)

// Service provides stock level operations.
// Transactions are managed by the caller: document services open the
// unit of work and call Increase/Decrease inside it.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Increase adds quantity to an item's stock level and returns the new level.
func (s *Service) Increase(ctx context.Context, itemID id.ID, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, apperror.NewValidation("quantity must be positive")
	}

	newQty, err := s.repo.AddQuantity(ctx, itemID, quantity)
	if err != nil {
		return 0, fmt.Errorf("increase stock for %s: %w", itemID, err)
	}

	logger.Debug(ctx, "stock increased",
		"item_id", itemID,
		"quantity", quantity,
		"new_level", newQty,
	)

	return newQty, nil
}

// Decrease subtracts quantity from an item's stock level under a row lock.
// Fails with InsufficientStock if the level would go negative.
func (s *Service) Decrease(ctx context.Context, itemID id.ID, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, apperror.NewValidation("quantity must be positive")
	}

	available, err := s.repo.GetQuantityForUpdate(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("get stock for %s: %w", itemID, err)
	}

	if available < quantity {
		return 0, apperror.NewInsufficientStock(itemID.String(), quantity, available)
	}

	newQty, err := s.repo.AddQuantity(ctx, itemID, -quantity)
	if err != nil {
		return 0, fmt.Errorf("decrease stock for %s: %w", itemID, err)
	}

	logger.Debug(ctx, "stock decreased",
		"item_id", itemID,
		"quantity", quantity,
		"new_level", newQty,
	)

	return newQty, nil
}

// CheckAvailability validates every demand line under row locks before
// any deduction happens. The first shortage aborts the whole check, so
// a multi-line operation either passes completely or fails completely.
func (s *Service) CheckAvailability(ctx context.Context, demands []Demand) error {
	for _, d := range demands {
		if d.Quantity <= 0 {
			return apperror.NewValidation(
				fmt.Sprintf("item %s: quantity must be positive", d.ItemID))
		}

		available, err := s.repo.GetQuantityForUpdate(ctx, d.ItemID)
		if err != nil {
			return fmt.Errorf("get stock for %s: %w", d.ItemID, err)
		}

		if available < d.Quantity {
			return apperror.NewInsufficientStock(d.ItemID.String(), d.Quantity, available)
		}
	}

	return nil
}

// Availability returns the current on-hand quantity without locking.
func (s *Service) Availability(ctx context.Context, itemID id.ID) (int64, error) {
	qty, err := s.repo.GetQuantity(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("get stock for %s: %w", itemID, err)
	}
	return qty, nil
}
