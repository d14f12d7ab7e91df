package handlers

import (
	"errors"

	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/internal/logging"

	"github.com/gofiber/fiber/v2"
)

var (
	errInternal = errors.New("internal server error")

	notFoundErrors = []error{
		domain.ErrRecipeNotFound,
		domain.ErrUserNotFound,
		domain.ErrTagNotFound,
		domain.ErrIngredientNotFound,
	}

	unauthorizedErrors = []error{
		domain.ErrUnauthenticated,
		domain.ErrTokenNotFound,
		domain.ErrTokenInvalid,
		domain.ErrTokenExpired,
		domain.ErrTokenRevoked,
	}

	badRequestErrors = []error{
		domain.ErrParseUUID,
		domain.ErrEmailTaken,
		domain.ErrUsernameTaken,
		domain.ErrInvalidCredentials,
		domain.ErrInvalidPassword,
		domain.ErrTagExists,
		domain.ErrIngredientExists,
		domain.ErrRecipeNameTaken,
		domain.ErrRecipeNameEmpty,
		domain.ErrCookingTimeOutOfRange,
		domain.ErrAmountOutOfRange,
		domain.ErrEmptyTags,
		domain.ErrEmptyIngredients,
		domain.ErrDuplicateTag,
		domain.ErrDuplicateIngredient,
		domain.ErrUnknownTag,
		domain.ErrUnknownIngredient,
		domain.ErrInvalidImage,
		domain.ErrStorageUnavailable,
		domain.ErrAlreadyFavorited,
		domain.ErrNotFavorited,
		domain.ErrAlreadyInShoppingCart,
		domain.ErrNotInShoppingCart,
		domain.ErrSelfFollow,
		domain.ErrAlreadySubscribed,
		domain.ErrNotSubscribed,
	}
)

func StatusFor(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case isAny(err, unauthorizedErrors):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case isAny(err, badRequestErrors):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError renders a service error with the status it maps to.
// Unexpected errors are logged and hidden from the client.
func handleError(c *fiber.Ctx, message string, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg(message)
		return presenters.ErrorResponse(c, status, message, errInternal)
	}
	return presenters.ErrorResponse(c, status, message, err)
}
