package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles customer catalog requests.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), h.Principal(c), cust); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCustomer(cust))
}

// Update handles PUT /catalog/customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.Get(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(cust)

	if err := h.service.Update(c.Request.Context(), h.Principal(c), cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

// Get handles GET /catalog/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	cust, err := h.service.Get(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

// List handles GET /catalog/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	filter := customer.Filter{
		Query:  c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	customers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.RespondList(c, dto.FromCustomers(customers), len(customers), filter.Limit, filter.Offset)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
