package handlers

import (
	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/tag"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TagHandler interface {
		GetTags(c *fiber.Ctx) error
		GetTagByID(c *fiber.Ctx) error
		CreateTag(c *fiber.Ctx) error
	}

	IngredientHandler interface {
		SearchIngredients(c *fiber.Ctx) error
		GetIngredientByID(c *fiber.Ctx) error
		CreateIngredient(c *fiber.Ctx) error
	}

	tagHandler struct {
		tagService tag.TagService
		validator  *validator.Validate
	}

	ingredientHandler struct {
		ingredientService ingredient.IngredientService
		validator         *validator.Validate
	}
)

func NewTagHandler(tagService tag.TagService, validator *validator.Validate) TagHandler {
	return &tagHandler{
		tagService: tagService,
		validator:  validator,
	}
}

func (h *tagHandler) GetTags(c *fiber.Ctx) error {
	res, err := h.tagService.GetTags(c.UserContext())
	if err != nil {
		return handleError(c, domain.MessageFailedGetTags, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *tagHandler) GetTagByID(c *fiber.Ctx) error {
	res, err := h.tagService.GetTagByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, domain.MessageFailedGetTag, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTag)
}

func (h *tagHandler) CreateTag(c *fiber.Ctx) error {
	req := new(domain.CreateTagRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateTag, err)
	}

	res, err := h.tagService.CreateTag(c.UserContext(), *req)
	if err != nil {
		return handleError(c, domain.MessageFailedCreateTag, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateTag)
}

func NewIngredientHandler(ingredientService ingredient.IngredientService, validator *validator.Validate) IngredientHandler {
	return &ingredientHandler{
		ingredientService: ingredientService,
		validator:         validator,
	}
}

// SearchIngredients matches on a case-insensitive name prefix taken from
// ?search= or, failing that, ?name=.
func (h *ingredientHandler) SearchIngredients(c *fiber.Ctx) error {
	res, err := h.ingredientService.SearchIngredients(c.UserContext(), c.Query("search", c.Query("name")))
	if err != nil {
		return handleError(c, domain.MessageFailedGetIngredients, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *ingredientHandler) GetIngredientByID(c *fiber.Ctx) error {
	res, err := h.ingredientService.GetIngredientByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, domain.MessageFailedGetIngredient, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredient)
}

func (h *ingredientHandler) CreateIngredient(c *fiber.Ctx) error {
	req := new(domain.CreateIngredientRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateIngredient, err)
	}

	res, err := h.ingredientService.CreateIngredient(c.UserContext(), *req)
	if err != nil {
		return handleError(c, domain.MessageFailedCreateIngredient, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateIngredient)
}
