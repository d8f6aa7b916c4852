package listings

import (
	"time"

	listsvc "incontridolci-backend/internal/application/listings"
	"incontridolci-backend/internal/middleware"
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *listsvc.Service
	Now     func() time.Time
}

// GET /api/v1/listings/promoted?city=&category=&limit=
func (h *Handlers) GetPromoted(c *fiber.Ctx) error {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	listings, err := h.Service.ActivePromoted(c.UserContext(), now, listsvc.PromotedFilter{
		City:     c.Query("city"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", listsvc.DefaultPromotedLimit),
	})
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("listings: promoted query failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Promoted listings fetched successfully", listings, fiber.Map{"count": len(listings)})
}
