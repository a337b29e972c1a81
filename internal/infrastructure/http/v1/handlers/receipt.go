package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles goods receipt requests.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new goods receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /document/receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	principal := h.Principal(c)

	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity(principal.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.ConfirmImmediately {
		err = h.service.ConfirmNew(ctx, principal, doc)
	} else {
		err = h.service.SaveDraft(ctx, principal, doc)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromReceipt(doc))
}

// Confirm handles POST /document/receipts/:id/confirm.
// Applies every line to stock atomically.
func (h *ReceiptHandler) Confirm(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Confirm(c.Request.Context(), h.Principal(c), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReceipt(doc))
}

// Get handles GET /document/receipts/:id.
func (h *ReceiptHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReceipt(doc))
}

// List handles GET /document/receipts.
func (h *ReceiptHandler) List(c *gin.Context) {
	filter := receipt.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if supplierID := c.Query("supplierId"); supplierID != "" {
		if parsed, err := id.Parse(supplierID); err == nil {
			filter.SupplierID = &parsed
		}
	}
	if status := c.Query("status"); status != "" {
		val := receipt.Status(status)
		filter.Status = &val
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.RespondList(c, dto.FromReceipts(docs), len(docs), filter.Limit, filter.Offset)
}

// RegisterRoutes registers goods receipt routes.
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/confirm", h.Confirm)
}
