package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/core/security"
	"stockpos/internal/domain/auth"
	"stockpos/internal/infrastructure/storage/memory"
)

type authFixture struct {
	store   *memory.Store
	service *auth.Service
	admin   security.Principal
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := memory.NewStore()

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	svc := auth.NewService(store.Users(), store, jwtService, auth.DefaultServiceConfig())

	return &authFixture{
		store:   store,
		service: svc,
		admin:   security.Principal{UserID: id.New(), Username: "root", Role: security.RoleAdmin},
	}
}

func (f *authFixture) seedUser(t *testing.T, username, password string, role security.Role) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := auth.NewUser(username, string(hash), role)
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "till", "secret-pass", security.RoleCashier)

	token, principal, err := f.service.Login(context.Background(), auth.Credentials{
		Username: "till",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, security.RoleCashier, principal.Role)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.False(t, token.ExpiresAt.IsZero())

	saved, err := f.store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "till", "secret-pass", security.RoleCashier)

	_, _, err := f.service.Login(context.Background(), auth.Credentials{
		Username: "till",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_UnknownUserIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	// Unknown usernames get the same error as wrong passwords.
	_, _, err := f.service.Login(context.Background(), auth.Credentials{
		Username: "nobody",
		Password: "whatever",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "till", "secret-pass", security.RoleCashier)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := f.service.Login(ctx, auth.Credentials{Username: "till", Password: "wrong"})
		require.Error(t, err)
	}

	// Even the correct password is rejected while locked.
	_, _, err := f.service.Login(ctx, auth.Credentials{Username: "till", Password: "secret-pass"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "till", "secret-pass", security.RoleCashier)

	require.NoError(t, f.service.SetActive(context.Background(), f.admin, user.ID, false))

	_, _, err := f.service.Login(context.Background(), auth.Credentials{
		Username: "till",
		Password: "secret-pass",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.service.CreateUser(ctx, f.admin, "newcashier", "longenough", security.RoleCashier)
	require.NoError(t, err)
	assert.Equal(t, security.RoleCashier, user.Role)
	assert.True(t, user.IsActive)

	// The stored hash must verify against the original password.
	saved, err := f.store.Users().GetByUsername(ctx, "newcashier")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("longenough")))
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	f := newAuthFixture(t)
	cashier := security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier}

	_, err := f.service.CreateUser(context.Background(), cashier, "x", "longenough", security.RoleCashier)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestCreateUser_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateUser(ctx, f.admin, "", "longenough", security.RoleCashier)
	require.Error(t, err)

	_, err = f.service.CreateUser(ctx, f.admin, "till", "short", security.RoleCashier)
	require.Error(t, err)

	f.seedUser(t, "taken", "secret-pass", security.RoleCashier)
	_, err = f.service.CreateUser(ctx, f.admin, "taken", "longenough", security.RoleCashier)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestJWTRoundtrip(t *testing.T) {
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	original := security.Principal{UserID: id.New(), Username: "till", Role: security.RoleCashier}
	tokenString, expiresAt, err := jwtService.GenerateAccessToken(original)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	parsed, err := jwtService.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	issuer := auth.NewJWTService(auth.DefaultJWTConfig("secret-a"))
	verifier := auth.NewJWTService(auth.DefaultJWTConfig("secret-b"))

	tokenString, _, err := issuer.GenerateAccessToken(security.Principal{
		UserID: id.New(), Username: "till", Role: security.RoleCashier,
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.Error(t, err)
}
