package customer

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/pkg/logger"
)

// Service provides business logic for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new customer. Any authenticated user may register
// customers at the counter.
func (s *Service) Create(ctx context.Context, principal security.Principal, c *Customer) error {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return err
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if c.Phone != nil && *c.Phone != "" {
		if err := s.checkPhoneFree(ctx, *c.Phone, c.ID); err != nil {
			return err
		}
	}

	now := time.Now()
	c.Audit.CreatedAt = now
	c.Audit.CreatedBy = principal.UserID
	c.Audit.Touch(principal.UserID, now)

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	logger.Info(ctx, "customer created", "customer_id", c.ID)
	return nil
}

// Update modifies customer attributes. Statistics fields are owned by
// checkout and cannot be edited here.
func (s *Service) Update(ctx context.Context, principal security.Principal, c *Customer) error {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return err
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.VisitCount = current.VisitCount
	c.TotalPurchases = current.TotalPurchases

	if c.Phone != nil && *c.Phone != "" {
		if err := s.checkPhoneFree(ctx, *c.Phone, c.ID); err != nil {
			return err
		}
	}

	c.Audit.Touch(principal.UserID, time.Now())

	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Get retrieves a customer by ID.
func (s *Service) Get(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// List returns customers matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Customer, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) checkPhoneFree(ctx context.Context, phone string, excludeID id.ID) error {
	existing, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return apperror.NewDuplicate("customer", "phone", phone)
	}
	return nil
}
