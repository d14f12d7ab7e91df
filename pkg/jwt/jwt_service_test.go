package jwt

import (
	"context"
	"testing"
	"time"

	"foodgram/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, NewMemoryTokenStore())

	token, err := svc.GenerateTokenUser("user-1", domain.RoleUser)
	require.NoError(t, err)

	id, role, err := svc.GetUserIDByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, domain.RoleUser, role)
}

func TestTokensGetDistinctIDs(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, NewMemoryTokenStore())

	a, err := svc.GenerateTokenUser("user-1", domain.RoleUser)
	require.NoError(t, err)
	b, err := svc.GenerateTokenUser("user-1", domain.RoleUser)
	require.NoError(t, err)

	ca, err := svc.ValidateTokenUser(context.Background(), a)
	require.NoError(t, err)
	cb, err := svc.ValidateTokenUser(context.Background(), b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret", time.Hour, NewMemoryTokenStore())
	verifier := NewJWTService("other", time.Hour, NewMemoryTokenStore())

	token, err := issuer.GenerateTokenUser("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = verifier.ValidateTokenUser(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = verifier.ValidateTokenUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	claims := UserClaims{
		UserID: "user-1",
		Role:   domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	svc := NewJWTService("secret", time.Hour, NewMemoryTokenStore())
	_, err = svc.ValidateTokenUser(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestRevokeToken(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService("secret", time.Hour, NewMemoryTokenStore())

	token, err := svc.GenerateTokenUser("user-1", domain.RoleUser)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(ctx, token))

	_, err = svc.ValidateTokenUser(ctx, token)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	err = svc.RevokeToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestMemoryTokenStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := &memoryTokenStore{revoked: map[string]time.Time{}, now: func() time.Time { return now }}

	require.NoError(t, store.Revoke(ctx, "jti", time.Minute))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
