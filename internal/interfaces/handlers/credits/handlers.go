package credits

import (
	"errors"

	creditsvc "incontridolci-backend/internal/application/credits"
	"incontridolci-backend/internal/domain"
	"incontridolci-backend/internal/middleware"
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *creditsvc.Service
}

// GET /api/v1/credits/balance
func (h *Handlers) GetBalance(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)
	if caller == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	b, err := h.Service.Balance(c.UserContext(), caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.Error(c, "Profile not found", fiber.StatusNotFound, nil)
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("credits: balance failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Balance fetched successfully", b, nil)
}

// GET /api/v1/credits/transactions?limit=&offset=
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)
	if caller == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	page, err := h.Service.ListTransactions(c.UserContext(), caller.UserID, c.QueryInt("limit", creditsvc.DefaultPageSize), c.QueryInt("offset", 0))
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("credits: list transactions failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transactions fetched successfully", page.Items, fiber.Map{
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// POST /api/v1/admin/credits/grant
func (h *Handlers) Grant(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	userID, err := uuid.Parse(body.UserID)
	if err != nil {
		return response.Error(c, "Invalid user_id", fiber.StatusBadRequest, nil)
	}

	b, err := h.Service.Grant(c.UserContext(), userID, body.Amount, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, creditsvc.ErrInvalidAmount):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, domain.ErrNotFound):
			return response.Error(c, "Profile not found", fiber.StatusNotFound, nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("credits: grant failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	log.Info().Str("user_id", userID.String()).Int("amount", body.Amount).Str("reason", body.Reason).Msg("credits granted")
	return response.SuccessCreated(c, "Credits granted", b, nil)
}
