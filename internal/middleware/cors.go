package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const functionAllowHeaders = "authorization, x-client-info, apikey, content-type"

// CORSConfig restricts browser origins. An empty AllowedSuffix allows any origin.
type CORSConfig struct {
	AllowedSuffix string
}

// CORS answers pre-flight requests with 200 "ok" and sets the allow headers the
// Supabase client sends. Origins outside AllowedSuffix are refused with 403.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		allowOrigin := "*"
		if cfg.AllowedSuffix != "" && origin != "" {
			if !originAllowed(origin, cfg.AllowedSuffix) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"status": "error",
					"error": fiber.Map{
						"message":    "Not allowed by CORS",
						"statusCode": 403,
						"details":    fiber.Map{},
					},
				})
			}
			allowOrigin = origin
			c.Vary(fiber.HeaderOrigin)
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, allowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, functionAllowHeaders)

		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, "POST, GET, OPTIONS")
			return c.Status(fiber.StatusOK).SendString("ok")
		}
		return c.Next()
	}
}

func originAllowed(origin, suffix string) bool {
	origin = strings.ToLower(origin)
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	return strings.HasSuffix(origin, strings.ToLower(suffix))
}
