package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: expiry, Issuer: "devcamper-api"})
}

func TestGenerateAndValidate(t *testing.T) {
	manager := newManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(7, "john@gmail.com", model.RolePublisher, 2)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RolePublisher, claims.Role)
	assert.Equal(t, 2, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidateRejects(t *testing.T) {
	manager := newManager(time.Hour)

	expired, _, err := newManager(-time.Minute).GenerateAccessToken(1, "a@b.co", model.RoleUser, 0)
	require.NoError(t, err)
	_, err = manager.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other, _, err := NewJWTManager(JWTConfig{Secret: "other", Expiry: time.Hour}).GenerateAccessToken(1, "a@b.co", model.RoleUser, 0)
	require.NoError(t, err)
	_, err = manager.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    1,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := refresh.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = manager.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("123456")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "123456"))
	assert.ErrorIs(t, VerifyPassword(hash, "1234567"), ErrPasswordMismatch)
}

func TestResetToken(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 40)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(token))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestBlacklist(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "john", model.RoleUser)
	ctx := context.Background()
	service := NewBlacklistService(db)

	require.NoError(t, service.RevokeToken(ctx, "live", user.ID, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, service.RevokeToken(ctx, "stale", user.ID, time.Now().Add(-time.Hour), "logout"))

	revoked, err := service.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = service.IsTokenRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	removed, err := service.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, service.RevokeAllUserTokens(ctx, user.ID))
	version, err := service.GetUserTokenVersion(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}
