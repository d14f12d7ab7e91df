package handlers

import (
	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/pkg/follow"

	"github.com/gofiber/fiber/v2"
)

type (
	FollowHandler interface {
		Subscribe(c *fiber.Ctx) error
		Unsubscribe(c *fiber.Ctx) error
		GetSubscriptions(c *fiber.Ctx) error
	}

	followHandler struct {
		followService follow.FollowService
	}
)

func NewFollowHandler(followService follow.FollowService) FollowHandler {
	return &followHandler{followService: followService}
}

func (h *followHandler) Subscribe(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	res, err := h.followService.Subscribe(c.UserContext(), c.Params("id"), userID, c.QueryInt("recipes_limit", 0))
	if err != nil {
		return handleError(c, domain.MessageFailedSubscribe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubscribe)
}

func (h *followHandler) Unsubscribe(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	if err := h.followService.Unsubscribe(c.UserContext(), c.Params("id"), userID); err != nil {
		return handleError(c, domain.MessageFailedUnsubscribe, err)
	}

	return presenters.NoContent(c)
}

func (h *followHandler) GetSubscriptions(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	page, limit := pagination(c)

	res, meta, err := h.followService.GetSubscriptions(c.UserContext(), userID, page, limit, c.QueryInt("recipes_limit", 0))
	if err != nil {
		return handleError(c, domain.MessageFailedGetSubscriptions, err)
	}

	return presenters.PaginatedResponse(c, res, meta, domain.MessageSuccessGetSubscriptions)
}
