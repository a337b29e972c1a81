package reports

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/security"
	"stockpos/internal/core/tx"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/valuation"
)

const defaultTopCustomers = 10

// Service provides report generation operations.
// Multi-read reports run inside a read-only transaction so their rows
// come from one snapshot; they never join in-flight document writes.
type Service struct {
	repo      Repository
	valuation *valuation.Service
	ro        tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, valuationSvc *valuation.Service, ro tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, valuation: valuationSvc, ro: ro}
}

// GetLowStock returns items needing replenishment.
func (s *Service) GetLowStock(ctx context.Context, principal security.Principal) ([]LowStockRow, error) {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("get low stock report: %w", err)
	}
	return rows, nil
}

// GetSalesSummary aggregates sales for the period.
func (s *Service) GetSalesSummary(ctx context.Context, principal security.Principal, filter SalesSummaryFilter) (*SalesSummary, error) {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return nil, err
	}
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}

	var report *SalesSummary
	err := s.ro.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.GetSalesSummary(ctx, filter)
		if err != nil {
			return fmt.Errorf("get sales summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// GetProfit computes gross profit per item over the period using
// weighted average costs. Admin only: margins are sensitive.
func (s *Service) GetProfit(ctx context.Context, principal security.Principal, filter ProfitFilter) (*ProfitReport, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}

	report := &ProfitReport{
		From:        filter.FromDate,
		To:          filter.ToDate,
		Revenue:     types.Zero(),
		Cost:        types.Zero(),
		GrossProfit: types.Zero(),
	}

	// Item sales and the per-item cost bases must come from one snapshot.
	err := s.ro.ReadOnly(ctx, func(ctx context.Context) error {
		sold, err := s.repo.GetItemSales(ctx, filter)
		if err != nil {
			return fmt.Errorf("get item sales: %w", err)
		}

		report.Rows = make([]ProfitRow, 0, len(sold))
		for _, is := range sold {
			cost, err := s.valuation.AverageUnitCost(ctx, is.ItemID)
			if err != nil {
				return fmt.Errorf("valuate item %s: %w", is.ItemID, err)
			}

			lineCost := types.Round2(cost.Value.Mul(types.MoneyFromInt(is.QuantitySold)))
			row := ProfitRow{
				ItemID:        is.ItemID,
				SKU:           is.SKU,
				Name:          is.Name,
				QuantitySold:  is.QuantitySold,
				Revenue:       is.Revenue,
				Cost:          lineCost,
				Profit:        is.Revenue.Sub(lineCost),
				MarginPercent: types.Zero(),
				EstimatedCost: cost.Estimated,
			}
			if is.Revenue.IsPositive() {
				row.MarginPercent = row.Profit.Mul(types.MoneyFromInt(100)).DivRound(is.Revenue, 2)
			}

			report.Rows = append(report.Rows, row)
			report.Revenue = report.Revenue.Add(row.Revenue)
			report.Cost = report.Cost.Add(row.Cost)
			if cost.Estimated {
				report.ContainsEstimates = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.GrossProfit = report.Revenue.Sub(report.Cost)
	return report, nil
}

// GetTopCustomers ranks customers by lifetime spend.
func (s *Service) GetTopCustomers(ctx context.Context, principal security.Principal, limit int) ([]TopCustomerRow, error) {
	if err := security.Authorize(principal, security.AnyAuthenticated); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopCustomers
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.repo.GetTopCustomers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get top customers: %w", err)
	}
	return rows, nil
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("fromDate and toDate are required")
	}
	if from.After(to) {
		return apperror.NewValidation("fromDate must be before toDate")
	}
	return nil
}
