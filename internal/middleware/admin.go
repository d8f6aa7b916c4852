package middleware

import (
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "x-admin-key"

// RequireAdminKey checks the x-admin-key header against a bcrypt hash.
// An empty hash disables the routes it guards.
func RequireAdminKey(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(adminKeyHeader)
		if hash == "" || key == "" {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
