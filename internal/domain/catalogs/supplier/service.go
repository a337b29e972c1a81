package supplier

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/pkg/logger"
)

// Service provides business logic for the supplier catalog.
type Service struct {
	repo Repository
}

// NewService creates a new supplier catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new supplier.
func (s *Service) Create(ctx context.Context, principal security.Principal, sp *Supplier) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := sp.Validate(ctx); err != nil {
		return err
	}

	now := time.Now()
	sp.Audit.CreatedAt = now
	sp.Audit.CreatedBy = principal.UserID
	sp.Audit.Touch(principal.UserID, now)

	if err := s.repo.Create(ctx, sp); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	logger.Info(ctx, "supplier created", "supplier_id", sp.ID)
	return nil
}

// Update modifies supplier attributes.
func (s *Service) Update(ctx context.Context, principal security.Principal, sp *Supplier) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}
	if err := sp.Validate(ctx); err != nil {
		return err
	}

	sp.Audit.Touch(principal.UserID, time.Now())

	if err := s.repo.Update(ctx, sp); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

// Get retrieves a supplier by ID.
func (s *Service) Get(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// List returns suppliers, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	return s.repo.List(ctx, activeOnly)
}
