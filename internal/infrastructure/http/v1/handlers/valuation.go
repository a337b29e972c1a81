package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/valuation"
)

// ValuationHandler exposes average cost lookups.
type ValuationHandler struct {
	*BaseHandler
	service *valuation.Service
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(base *BaseHandler, service *valuation.Service) *ValuationHandler {
	return &ValuationHandler{BaseHandler: base, service: service}
}

// AverageCost handles GET /valuation/items/:id/average-cost.
func (h *ValuationHandler) AverageCost(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	cost, err := h.service.AverageUnitCost(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cost)
}

// RegisterRoutes registers valuation routes.
func (h *ValuationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items/:id/average-cost", h.AverageCost)
}
