package middleware

import (
	"errors"
	"strings"

	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Edge-function routes get the flat
// {"error": ...} body; everything else gets the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if strings.HasPrefix(c.Path(), "/functions/") {
		return response.FunctionError(c, message, code)
	}
	return response.Error(c, message, code, nil)
}
