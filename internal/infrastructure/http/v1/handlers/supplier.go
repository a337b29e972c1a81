package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles supplier catalog requests.
type SupplierHandler struct {
	*BaseHandler
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/suppliers.
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sp := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), h.Principal(c), sp); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSupplier(sp))
}

// Update handles PUT /catalog/suppliers/:id.
func (h *SupplierHandler) Update(c *gin.Context) {
	supplierID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sp, err := h.service.Get(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(sp)

	if err := h.service.Update(c.Request.Context(), h.Principal(c), sp); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplier(sp))
}

// Get handles GET /catalog/suppliers/:id.
func (h *SupplierHandler) Get(c *gin.Context) {
	supplierID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sp, err := h.service.Get(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplier(sp))
}

// List handles GET /catalog/suppliers.
func (h *SupplierHandler) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"

	suppliers, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.RespondList(c, dto.FromSuppliers(suppliers), len(suppliers), 0, 0)
}

// RegisterRoutes registers supplier routes.
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
