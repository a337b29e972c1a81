// Package security defines the authenticated principal and the
// authorization guard applied by domain services.
package security

import (
	"fmt"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
)

// Role is the access role assigned to a user account.
type Role string

const (
	// RoleAdmin can run every operation, including receipt confirmation
	// and return processing.
	RoleAdmin Role = "ADMIN"

	// RoleCashier can run sales checkout and read operations.
	RoleCashier Role = "CASHIER"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCashier:
		return Role(s), nil
	default:
		return "", apperror.NewValidation(fmt.Sprintf("unknown role %q", s))
	}
}

// Principal identifies the authenticated caller of an operation.
// It is always passed explicitly to domain services; domain code never
// pulls the caller out of a context value.
type Principal struct {
	UserID   id.ID
	Username string
	Role     Role
}

// IsZero reports whether the principal carries no authenticated user.
func (p Principal) IsZero() bool {
	return id.IsNil(p.UserID) && p.Username == ""
}

// Level is the minimum access required by an operation.
type Level int

const (
	// AnyAuthenticated allows any logged-in user.
	AnyAuthenticated Level = iota

	// AdminOnly restricts the operation to RoleAdmin.
	AdminOnly
)

// Authorize checks the principal against the required level.
// Returns Unauthorized for a missing principal and Forbidden for an
// insufficient role. The check runs before any state is touched.
func Authorize(p Principal, level Level) error {
	if p.IsZero() {
		return apperror.NewUnauthorized("authentication required")
	}
	switch level {
	case AnyAuthenticated:
		return nil
	case AdminOnly:
		if p.Role != RoleAdmin {
			return apperror.NewForbidden("admin role required")
		}
		return nil
	default:
		return apperror.NewForbidden("unknown access level")
	}
}
