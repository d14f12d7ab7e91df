package handlers

import (
	"foodgram/domain"

	"github.com/gofiber/fiber/v2"
)

func currentUser(c *fiber.Ctx) (string, string) {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if role == "" {
		role = domain.RoleAnonymous
	}
	return userID, role
}

func pagination(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", domain.DefaultPage)
	if page < 1 {
		page = domain.DefaultPage
	}
	limit := c.QueryInt("limit", domain.DefaultLimit)
	if limit < 1 {
		limit = domain.DefaultLimit
	}
	if limit > domain.MaxLimit {
		limit = domain.MaxLimit
	}
	return page, limit
}
