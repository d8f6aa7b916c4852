package promotions

import (
	"errors"

	promosvc "incontridolci-backend/internal/application/promotions"
	"incontridolci-backend/internal/middleware"
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *promosvc.Service
}

type promoteBody struct {
	ListingID             *string `json:"listingId"`
	PromotionType         *string `json:"promotionType"`
	Cost                  *int    `json:"cost"`
	DurationHours         *int    `json:"durationHours"`
	TimeSlot              *string `json:"timeSlot"`
	TimezoneOffsetMinutes *int    `json:"timezoneOffsetMinutes"`
}

// POST /functions/v1/promote-listing
// The body is decoded regardless of Content-Type, like the Supabase edge runtime does.
func (h *Handlers) PromoteListing(c *fiber.Ctx) error {
	var body promoteBody
	if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil {
		return response.FunctionError(c, "Invalid JSON body", fiber.StatusBadRequest)
	}

	res, err := h.Service.Promote(c.UserContext(), middleware.GetCaller(c), promosvc.PromoteInput{
		ListingID:             body.ListingID,
		PromotionType:         body.PromotionType,
		Cost:                  body.Cost,
		DurationHours:         body.DurationHours,
		TimeSlot:              body.TimeSlot,
		TimezoneOffsetMinutes: body.TimezoneOffsetMinutes,
	})
	if err != nil {
		status := fiber.StatusBadRequest
		var perr *promosvc.Error
		if errors.As(err, &perr) {
			status = perr.Status()
		}
		return response.FunctionError(c, err.Error(), status)
	}
	return response.FunctionSuccess(c, res.Message)
}
