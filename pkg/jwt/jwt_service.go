package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodgram/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type (
	JWTService interface {
		GenerateTokenUser(userId string, role string) (string, error)
		ValidateTokenUser(ctx context.Context, token string) (*UserClaims, error)
		GetUserIDByToken(ctx context.Context, token string) (string, string, error)
		RevokeToken(ctx context.Context, token string) error
	}

	UserClaims struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		ttl       time.Duration
		store     TokenStore
	}
)

func NewJWTService(secretKey string, ttl time.Duration, store TokenStore) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "FOODGRAM",
		ttl:       ttl,
		store:     store,
	}
}

func (j *jwtService) GenerateTokenUser(userId string, role string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		userId,
		role,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

// ValidateTokenUser checks signature, expiry and revocation.
func (j *jwtService) ValidateTokenUser(ctx context.Context, token string) (*UserClaims, error) {
	t_Token, err := jwt.ParseWithClaims(token, &UserClaims{}, j.parseToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*UserClaims)
	if !ok || !t_Token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, domain.ErrTokenInvalid
	}

	revoked, err := j.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

func (j *jwtService) GetUserIDByToken(ctx context.Context, token string) (string, string, error) {
	claims, err := j.ValidateTokenUser(ctx, token)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}

// RevokeToken blacklists the token id until the token would have expired.
func (j *jwtService) RevokeToken(ctx context.Context, token string) error {
	claims, err := j.ValidateTokenUser(ctx, token)
	if err != nil {
		return err
	}

	ttl := j.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return j.store.Revoke(ctx, claims.ID, ttl)
}
