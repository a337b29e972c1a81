package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/core/tx"
	"stockpos/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
	}
}

// Service provides authentication logic.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// CreateUser registers a new user account. Admin only.
func (s *Service) CreateUser(ctx context.Context, principal security.Principal, username, password string, role security.Role) (*User, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if len(password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	if _, err := security.ParseRole(string(role)); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "username", username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(username, string(passwordHash), role)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, security.Principal, error) {
	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, security.Principal{}, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, security.Principal{}, err
	}

	if err := user.CanLogin(); err != nil {
		return nil, security.Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if saveErr := s.userRepo.Update(ctx, user); saveErr != nil {
			logger.Warn(ctx, "failed to record login failure", "error", saveErr)
		}
		return nil, security.Principal{}, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "error", err)
	}

	principal := user.Principal()
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(principal)
	if err != nil {
		return nil, security.Principal{}, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)

	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, principal, nil
}

// GetUser retrieves a user by ID. Admin only.
func (s *Service) GetUser(ctx context.Context, principal security.Principal, userID id.ID) (*User, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers retrieves all users. Admin only.
func (s *Service) ListUsers(ctx context.Context, principal security.Principal) ([]*User, error) {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// SetActive enables or disables a user account. Admin only.
func (s *Service) SetActive(ctx context.Context, principal security.Principal, userID id.ID, active bool) error {
	if err := security.Authorize(principal, security.AdminOnly); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.IsActive = active
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "user active flag changed", "user_id", userID, "active", active)
	return nil
}
