package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/kicks_premium/pkg/db/dbtest"
	"github.com/Skotchmaster/kicks_premium/pkg/tokens"
	"github.com/Skotchmaster/kicks_premium/services/auth/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/auth/internal/repo"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := dbtest.Open(t, &models.User{}, &models.RefreshToken{})
	return &AuthService{
		Repo:          &repo.GormRepo{DB: db},
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "malformed email", email: "buyer.example.com", password: "secret1"},
		{name: "short password", email: "buyer@example.com", password: "12345"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestAuthService(t)

			_, err := svc.Register(context.Background(), tt.email, tt.password, "")
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_NormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Buyer@Example.com ", "secret1", " Ana ")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", user.Email)
	assert.Equal(t, "Ana", user.FullName)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.False(t, user.IsAdmin)

	_, err = svc.Register(ctx, "buyer@example.com", "another1", "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "buyer@example.com", "secret1", "")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "buyer@example.com", "nope")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "secret1")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(ctx, "BUYER@example.com", "secret1")
		require.NoError(t, err)
		require.NotNil(t, res.Tokens)
		assert.False(t, res.Tokens.IsAdmin)

		claims, err := tokens.AccessClaimsFromToken(res.Tokens.AccessToken, svc.AccessSecret)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID.String(), claims.Subject)
		assert.Equal(t, tokens.RoleUser, claims.Role)
		assert.Equal(t, "buyer@example.com", claims.Email)
	})
}

func TestAuthService_Refresh_RotatesAndPicksUpAdminRole(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "admin@example.com", "secret1", "")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "admin@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", true).Error)

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.True(t, pair.IsAdmin)
	assert.NotEqual(t, res.Tokens.RefreshToken, pair.RefreshToken)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, claims.Role)

	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized, "a rotated token must not be reusable")

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Refresh_Rejects(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)

	unknown, err := tokens.NewRefreshToken(svc.RefreshSecret, uuid.NewString(), uuid.NewString(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, unknown)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_LogOut_RevokesRefreshToken(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "buyer@example.com", "secret1", "")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "buyer@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(ctx, res.Tokens.RefreshToken))
	require.NoError(t, svc.LogOut(ctx, ""))

	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "buyer@example.com", "secret1", "")
	require.NoError(t, err)

	got, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
