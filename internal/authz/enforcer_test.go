package authz

import (
	"testing"

	"foodgram/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcerRouteGate(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		name   string
		role   string
		route  string
		method string
		want   bool
	}{
		{"anonymous lists recipes", domain.RoleAnonymous, "/api/recipes", "GET", true},
		{"anonymous reads recipe", domain.RoleAnonymous, "/api/recipes/:id", "GET", true},
		{"anonymous cannot create recipe", domain.RoleAnonymous, "/api/recipes", "POST", false},
		{"anonymous cannot favorite", domain.RoleAnonymous, "/api/recipes/:id/favorite", "POST", false},
		{"anonymous cannot probe favorite", domain.RoleAnonymous, "/api/recipes/:id/favorite", "GET", false},
		{"user favorites", domain.RoleUser, "/api/recipes/:id/favorite", "POST", true},
		{"user reaches favorite with any verb", domain.RoleUser, "/api/recipes/:id/favorite", "PATCH", true},
		{"user patches recipe", domain.RoleUser, "/api/recipes/:id", "PATCH", true},
		{"user downloads list", domain.RoleUser, "/api/recipes/download_shopping_cart", "GET", true},
		{"anonymous cannot download list", domain.RoleAnonymous, "/api/recipes/download_shopping_cart", "GET", false},
		{"user cannot create tag", domain.RoleUser, "/api/tags", "POST", false},
		{"admin creates tag", domain.RoleAdmin, "/api/tags", "POST", true},
		{"admin inherits anonymous reads", domain.RoleAdmin, "/api/ingredients", "GET", true},
		{"anonymous registers", domain.RoleAnonymous, "/api/users", "POST", true},
		{"anonymous cannot read me", domain.RoleAnonymous, "/api/users/me", "GET", false},
		{"unknown route", domain.RoleAdmin, "/api/unknown", "GET", false},
		{"unknown role", "guest", "/api/recipes", "GET", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Allowed(tt.role, tt.route, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAuthorOrAdmin(t *testing.T) {
	assert.True(t, IsAuthorOrAdmin("a", domain.RoleUser, "a"))
	assert.False(t, IsAuthorOrAdmin("b", domain.RoleUser, "a"))
	assert.True(t, IsAuthorOrAdmin("b", domain.RoleAdmin, "a"))
	assert.False(t, IsAuthorOrAdmin("", domain.RoleAnonymous, ""))
}
