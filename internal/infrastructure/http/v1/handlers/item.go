package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles stock item catalog requests.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
	ledger  *ledger.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service, ledgerSvc *ledger.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service, ledger: ledgerSvc}
}

// Create handles POST /catalog/items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), h.Principal(c), it); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromItem(it))
}

// Update handles PUT /catalog/items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it, err := h.service.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(it)

	if err := h.service.Update(c.Request.Context(), h.Principal(c), it); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(it))
}

// Get handles GET /catalog/items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	it, err := h.service.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(it))
}

// FindByCode handles GET /catalog/items/lookup?code=...
// Resolves a SKU or barcode, the scanner path at the register.
func (h *ItemHandler) FindByCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.Error(c, apperror.NewValidation("code query parameter is required"))
		return
	}

	it, err := h.service.FindByCode(c.Request.Context(), code)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(it))
}

// List handles GET /catalog/items.
func (h *ItemHandler) List(c *gin.Context) {
	filter := item.Filter{
		Query:  c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if active := c.Query("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.RespondList(c, dto.FromItems(items), len(items), filter.Limit, filter.Offset)
}

// Availability handles GET /catalog/items/:id/availability.
// Lets the register check stock before building a cart; checkout still
// revalidates under row locks.
func (h *ItemHandler) Availability(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	qty, err := h.ledger.Availability(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{ItemID: itemID.String(), QuantityOnHand: qty})
}

// RegisterRoutes registers item routes.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/lookup", h.FindByCode)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/availability", h.Availability)
	rg.PUT("/:id", h.Update)
}
