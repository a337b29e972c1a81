// Package auth provides authentication and credential management.
package auth

import (
	"context"
	"time"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
)

// User represents a system user account.
type User struct {
	ID                  id.ID         `db:"id" json:"id"`
	Username            string        `db:"username" json:"username"`
	PasswordHash        string        `db:"password_hash" json:"-"`
	FullName            string        `db:"full_name" json:"fullName,omitempty"`
	Role                security.Role `db:"role" json:"role"`
	IsActive            bool          `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time    `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int           `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time    `db:"locked_until" json:"-"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
	Version             int           `db:"version" json:"version"`
}

// NewUser creates a new active user.
func NewUser(username, passwordHash string, role security.Role) *User {
	now := time.Now()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if _, err := security.ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}

// IsLocked returns true if the account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if the user can log in.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets the failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// Principal converts the user to an authenticated principal.
func (u *User) Principal() security.Principal {
	return security.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}
