package presenters

import (
	"foodgram/domain"
	"foodgram/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type (
	Response struct {
		Status  bool                `json:"status"`
		Message string              `json:"message"`
		Data    any                 `json:"data,omitempty"`
		Meta    any                 `json:"meta,omitempty"`
		Error   string              `json:"error,omitempty"`
		Errors  map[string][]string `json:"errors,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func PaginatedResponse(c *fiber.Ctx, data any, pagination domain.Pagination, message string) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
		Meta:    pagination,
	})
}

// ErrorResponse renders a failure. Validation errors also carry a per-field
// message map.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
		if fields := utils.FieldErrors(err); fields != nil {
			res.Message = domain.MessageFailedValidation
			res.Error = message
			res.Errors = fields
		}
	}
	return c.Status(statusCode).JSON(res)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func MethodNotAllowed(c *fiber.Ctx) error {
	return ErrorResponse(c, fiber.StatusMethodNotAllowed, domain.MessageMethodNotAllowed, nil)
}
