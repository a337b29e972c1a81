package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/documents/saleret"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// ReturnHandler handles sale return requests.
type ReturnHandler struct {
	*BaseHandler
	service *saleret.Service
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(base *BaseHandler, service *saleret.Service) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, service: service}
}

// Process handles POST /document/returns.
func (h *ReturnHandler) Process(c *gin.Context) {
	var req dto.ProcessReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Process(c.Request.Context(), h.Principal(c), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromReturn(doc))
}

// Get handles GET /document/returns/:id.
func (h *ReturnHandler) Get(c *gin.Context) {
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

	h.OK(c, dto.FromReturn(doc))
}

// List handles GET /document/returns.
func (h *ReturnHandler) List(c *gin.Context) {
	filter := saleret.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if saleID := c.Query("saleId"); saleID != "" {
		if parsed, err := id.Parse(saleID); err == nil {
			filter.SaleID = &parsed
		}
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

	h.RespondList(c, dto.FromReturns(docs), len(docs), filter.Limit, filter.Offset)
}

// RegisterRoutes registers return routes.
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Process)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
