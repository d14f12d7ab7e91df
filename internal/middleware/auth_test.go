package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"foodgram/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct{}

func (fakeValidator) GetUserIDByToken(_ context.Context, token string) (string, string, error) {
	switch token {
	case "user-token":
		return "u1", domain.RoleUser, nil
	case "admin-token":
		return "a1", domain.RoleAdmin, nil
	}
	return "", "", domain.ErrTokenInvalid
}

type fakeEnforcer map[string]bool

func (f fakeEnforcer) Allowed(role, route, method string) (bool, error) {
	return f[role+" "+method+" "+route], nil
}

func newTestApp() *fiber.App {
	m := NewMiddleware()
	app := fiber.New()
	app.Use(m.AuthMiddleware(fakeValidator{}))

	gate := m.Authorize(fakeEnforcer{
		"anonymous GET /open": true,
		"user GET /private":   true,
		"admin GET /private":  true,
		"admin POST /private": true,
	})
	ok := func(c *fiber.Ctx) error { return c.SendString(c.Locals("role").(string)) }
	app.Get("/open", gate, ok)
	app.Get("/private", gate, ok)
	app.Post("/private", gate, ok)
	return app
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Token abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("abc")
	assert.False(t, ok)
	_, ok = bearerToken("")
	assert.False(t, ok)
}

func TestAuthorizeStatuses(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"anonymous on open route", "GET", "/open", "", fiber.StatusOK},
		{"anonymous on private route", "GET", "/private", "", fiber.StatusUnauthorized},
		{"user on private route", "GET", "/private", "Token user-token", fiber.StatusOK},
		{"user without permission", "POST", "/private", "Token user-token", fiber.StatusForbidden},
		{"admin with permission", "POST", "/private", "Bearer admin-token", fiber.StatusOK},
		{"invalid token on open route", "GET", "/open", "Token nope", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
