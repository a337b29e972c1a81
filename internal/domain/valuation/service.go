// Package valuation computes weighted average unit costs from confirmed
// goods receipts.
package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockpos/internal/core/id"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/pkg/logger"
)

// Cost is a valuation result.
type Cost struct {
	// Value is the average unit cost, rounded to 2 decimal places.
	Value types.Money `json:"value"`

	// Estimated is set when no confirmed receipt covers the item and
	// the selling price was used as a stand-in. Profit figures built on
	// an estimated cost are approximations.
	Estimated bool `json:"estimated"`
}

// CostBasis is the receipt history aggregate for one item.
type CostBasis struct {
	// TotalCost is sum(unit_cost * quantity) over confirmed receipt lines.
	TotalCost types.Money

	// TotalQuantity is sum(quantity) over the same lines.
	TotalQuantity int64
}

// Repository reads the cost basis from confirmed receipts.
type Repository interface {
	CostBasis(ctx context.Context, itemID id.ID) (CostBasis, error)
}

// Cache stores computed costs between receipt confirmations.
// A nil-safe noop implementation is acceptable.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

const cacheTTL = 10 * time.Minute

// Service computes average unit costs.
type Service struct {
	repo  Repository
	items item.Repository
	cache Cache
}

// NewService creates a new valuation service.
func NewService(repo Repository, items item.Repository, cache Cache) *Service {
	return &Service{repo: repo, items: items, cache: cache}
}

// AverageUnitCost returns the weighted average cost for an item:
// sum(cost * qty) / sum(qty) over confirmed receipt lines, rounded to
// 2 decimal places. Items never received fall back to the selling price
// with the Estimated flag set.
func (s *Service) AverageUnitCost(ctx context.Context, itemID id.ID) (Cost, error) {
	key := cacheKey(itemID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached Cost
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and recompute.
		s.cache.Delete(ctx, key)
	}

	cost, err := s.compute(ctx, itemID)
	if err != nil {
		return Cost{}, err
	}

	if raw, err := json.Marshal(cost); err == nil {
		s.cache.Set(ctx, key, string(raw), cacheTTL)
	}

	return cost, nil
}

func (s *Service) compute(ctx context.Context, itemID id.ID) (Cost, error) {
	basis, err := s.repo.CostBasis(ctx, itemID)
	if err != nil {
		return Cost{}, fmt.Errorf("get cost basis for %s: %w", itemID, err)
	}

	if basis.TotalQuantity <= 0 {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return Cost{}, err
		}
		logger.Debug(ctx, "no receipt history, using selling price as cost estimate",
			"item_id", itemID)
		return Cost{Value: types.Round2(it.SellingPrice), Estimated: true}, nil
	}

	avg := basis.TotalCost.DivRound(types.MoneyFromInt(basis.TotalQuantity), 2)
	return Cost{Value: avg}, nil
}

// Invalidate drops cached costs for the given items. Wired as a receipt
// confirmation hook.
func (s *Service) Invalidate(ctx context.Context, itemIDs []id.ID) {
	if len(itemIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		keys = append(keys, cacheKey(itemID))
	}
	s.cache.Delete(ctx, keys...)
}

func cacheKey(itemID id.ID) string {
	return "avgcost:" + itemID.String()
}
