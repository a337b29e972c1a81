package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/domain/auth"
	"stockpos/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and user management.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, principal, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		UserID:      principal.UserID.String(),
		Username:    principal.Username,
		Role:        string(principal.Role),
	})
}

// CreateUser handles POST /auth/users.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := security.ParseRole(req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), h.Principal(c), req.Username, req.Password, role)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// GetUser handles GET /auth/users/:id.
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), h.Principal(c), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// ListUsers handles GET /auth/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), h.Principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = dto.FromUser(u)
	}
	h.OK(c, out)
}

// SetUserActive handles PUT /auth/users/:id/active.
func (h *AuthHandler) SetUserActive(c *gin.Context) {
	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetUserActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), h.Principal(c), userID, *req.Active); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)

	protected.POST("/users", h.CreateUser)
	protected.GET("/users", h.ListUsers)
	protected.GET("/users/:id", h.GetUser)
	protected.PUT("/users/:id/active", h.SetUserActive)
}
