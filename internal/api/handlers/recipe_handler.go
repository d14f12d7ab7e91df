package handlers

import (
	"fmt"

	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipeDetail(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		AddFavorite(c *fiber.Ctx) error
		RemoveFavorite(c *fiber.Ctx) error
		AddToShoppingCart(c *fiber.Ctx) error
		RemoveFromShoppingCart(c *fiber.Ctx) error
		DownloadShoppingList(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	page, limit := pagination(c)

	filter := domain.RecipeFilter{
		AuthorID:         c.Query("author"),
		IsFavorited:      c.QueryBool("is_favorited", false),
		IsInShoppingCart: c.QueryBool("is_in_shopping_cart", false),
	}
	// ?tags=breakfast&tags=lunch
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		if len(slug) > 0 {
			filter.Tags = append(filter.Tags, string(slug))
		}
	}

	res, meta, err := h.recipeService.GetRecipes(c.UserContext(), filter, userID, page, limit)
	if err != nil {
		return handleError(c, domain.MessageFailedGetRecipes, err)
	}

	return presenters.PaginatedResponse(c, res, meta, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipeDetail(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	res, err := h.recipeService.GetRecipeByID(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return handleError(c, domain.MessageFailedGetRecipeDetail, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	req := new(domain.CreateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.UserContext(), *req, userID)
	if err != nil {
		return handleError(c, domain.MessageFailedCreateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

// UpdateRecipe serves both PUT and PATCH; absent fields are left untouched.
func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	userID, role := currentUser(c)

	req := new(domain.UpdateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRecipe, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.UserContext(), c.Params("id"), *req, userID, role)
	if err != nil {
		return handleError(c, domain.MessageFailedUpdateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	userID, role := currentUser(c)

	if err := h.recipeService.DeleteRecipe(c.UserContext(), c.Params("id"), userID, role); err != nil {
		return handleError(c, domain.MessageFailedDeleteRecipe, err)
	}

	return presenters.NoContent(c)
}

func (h *recipeHandler) AddFavorite(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	res, err := h.recipeService.AddFavorite(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return handleError(c, domain.MessageFailedAddFavorite, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddFavorite)
}

func (h *recipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	if err := h.recipeService.RemoveFavorite(c.UserContext(), c.Params("id"), userID); err != nil {
		return handleError(c, domain.MessageFailedRemoveFavorite, err)
	}

	return presenters.NoContent(c)
}

func (h *recipeHandler) AddToShoppingCart(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	res, err := h.recipeService.AddToShoppingCart(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return handleError(c, domain.MessageFailedAddShoppingCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddShoppingCart)
}

func (h *recipeHandler) RemoveFromShoppingCart(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	if err := h.recipeService.RemoveFromShoppingCart(c.UserContext(), c.Params("id"), userID); err != nil {
		return handleError(c, domain.MessageFailedRemoveShoppingCart, err)
	}

	return presenters.NoContent(c)
}

func (h *recipeHandler) DownloadShoppingList(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	body, err := h.recipeService.DownloadShoppingList(c.UserContext(), userID)
	if err != nil {
		return handleError(c, domain.MessageFailedDownloadShoppingList, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", domain.ShoppingListFilename))
	return c.Status(fiber.StatusOK).Send(body)
}
