package middleware

import (
	"errors"

	"incontridolci-backend/internal/application/identity"
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const callerLocal = "caller"

// Identify resolves the bearer token, when present, to a caller and stores it in Locals.
// It never rejects: handlers decide whether an anonymous request is acceptable.
func Identify(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" || provider == nil {
			return c.Next()
		}
		caller, err := provider.Resolve(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, identity.ErrUnauthorized) {
				log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("identity provider unavailable")
			}
			return c.Next()
		}
		c.Locals(callerLocal, caller)
		return c.Next()
	}
}

// RequireCaller rejects requests that Identify could not attach a caller to.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCaller(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetCaller returns the authenticated caller, or nil.
func GetCaller(c *fiber.Ctx) *identity.Caller {
	caller, _ := c.Locals(callerLocal).(*identity.Caller)
	return caller
}

// SetCaller attaches a caller directly; used by tests and internal routes.
func SetCaller(c *fiber.Ctx, caller *identity.Caller) {
	c.Locals(callerLocal, caller)
}
