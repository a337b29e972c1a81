package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/domain/reports"
)

// ReportHandler handles reporting requests. Report payloads are served
// as domain aggregates directly.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// LowStock handles GET /reports/low-stock.
func (h *ReportHandler) LowStock(c *gin.Context) {
	rows, err := h.service.GetLowStock(c.Request.Context(), h.Principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// SalesSummary handles GET /reports/sales-summary.
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.service.GetSalesSummary(c.Request.Context(), h.Principal(c), reports.SalesSummaryFilter{
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Profit handles GET /reports/profit.
func (h *ReportHandler) Profit(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.GetProfit(c.Request.Context(), h.Principal(c), reports.ProfitFilter{
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// TopCustomers handles GET /reports/top-customers.
func (h *ReportHandler) TopCustomers(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 10)

	rows, err := h.service.GetTopCustomers(c.Request.Context(), h.Principal(c), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

func (h *ReportHandler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		h.Error(c, apperror.NewValidation("from must be an RFC3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		h.Error(c, apperror.NewValidation("to must be an RFC3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/sales-summary", h.SalesSummary)
	rg.GET("/profit", h.Profit)
	rg.GET("/top-customers", h.TopCustomers)
}
