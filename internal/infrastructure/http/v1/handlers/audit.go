package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the change trail to administrators.
type AuditHandler struct {
	*BaseHandler
	service *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, service *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, service: service}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	if err := security.Authorize(h.Principal(c), security.AdminOnly); err != nil {
		h.Error(c, err)
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entries, err := h.service.GetEntityHistory(
		c.Request.Context(),
		c.Param("entityType"),
		entityID,
		h.ParseIntQuery(c, "limit", 50),
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entries)
}

// RegisterRoutes registers audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:entityType/:id", h.History)
}
