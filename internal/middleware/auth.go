package middleware

import (
	"context"
	"strings"

	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/internal/logging"

	"github.com/gofiber/fiber/v2"
)

type (
	TokenValidator interface {
		GetUserIDByToken(ctx context.Context, token string) (string, string, error)
	}

	RouteEnforcer interface {
		Allowed(role, route, method string) (bool, error)
	}
)

// AuthMiddleware resolves the caller. Requests without a token continue as
// anonymous; a bad or revoked token is rejected on every route.
func (m *middleware) AuthMiddleware(jwtService TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Locals("user_id", "")
			c.Locals("role", domain.RoleAnonymous)
			return c.Next()
		}

		userID, role, err := jwtService.GetUserIDByToken(c.UserContext(), token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		c.Locals("token", token)
		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	}
}

// Authorize checks the caller's role against the route it matched.
func (m *middleware) Authorize(enforcer RouteEnforcer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == "" {
			role = domain.RoleAnonymous
		}

		allowed, err := enforcer.Allowed(role, c.Route().Path, c.Method())
		if err != nil {
			logging.Error().Err(err).Str("route", c.Route().Path).Msg("authorization check failed")
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedProcessRequest, err)
		}
		if allowed {
			return c.Next()
		}

		if role == domain.RoleAnonymous {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageUnauthenticated, domain.ErrUnauthenticated)
		}
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageForbidden, domain.ErrForbidden)
	}
}

// bearerToken accepts "Token <jwt>" and "Bearer <jwt>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return token, true
	}
	return "", false
}
