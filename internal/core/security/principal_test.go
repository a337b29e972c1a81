package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
)

func TestAuthorize(t *testing.T) {
	admin := Principal{UserID: id.New(), Username: "boss", Role: RoleAdmin}
	cashier := Principal{UserID: id.New(), Username: "till", Role: RoleCashier}

	tests := []struct {
		name      string
		principal Principal
		level     Level
		wantCode  string
	}{
		{"admin passes admin-only", admin, AdminOnly, ""},
		{"admin passes any", admin, AnyAuthenticated, ""},
		{"cashier passes any", cashier, AnyAuthenticated, ""},
		{"cashier blocked from admin-only", cashier, AdminOnly, apperror.CodeForbidden},
		{"zero principal rejected", Principal{}, AnyAuthenticated, apperror.CodeUnauthorized},
		{"zero principal rejected for admin", Principal{}, AdminOnly, apperror.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.level)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("CASHIER")
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, role)

	_, err = ParseRole("manager")
	assert.Error(t, err)
}
