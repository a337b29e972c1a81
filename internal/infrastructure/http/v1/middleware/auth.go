package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockpos/internal/core/apperror"
	appctx "stockpos/internal/core/context"
	"stockpos/internal/core/security"
)

// TokenValidator validates a bearer token into a principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (security.Principal, error)
}

// Auth middleware validates JWT tokens and stores the principal on the
// request context. Authorization decisions stay in the domain layer;
// the context copy exists for logging and audit only.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", principal.UserID.String())
		c.Set("username", principal.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
