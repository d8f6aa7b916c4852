package uploads

import (
	"errors"

	uploadsvc "incontridolci-backend/internal/application/uploads"
	"incontridolci-backend/internal/middleware"
	"incontridolci-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadListingPhoto POST /api/v1/uploads/listing-photo
func (h *Handlers) UploadListingPhoto(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)
	if caller == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", fiber.StatusBadRequest, nil)
	}

	res, err := h.Service.ListingPhotoURL(c.UserContext(), caller.UserID, req.FileName)
	if err != nil {
		if errors.Is(err, uploadsvc.ErrInvalidFileName) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		log.Error().Err(err).Str("bucket", uploadsvc.ListingPhotosBucket).Str("trace_id", middleware.GetTraceID(c)).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
