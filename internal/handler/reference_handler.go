package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/correcteur-api/internal/service"
	"github.com/noah-isme/correcteur-api/internal/utils"
	"github.com/noah-isme/correcteur-api/pkg/ai"
)

// ReferenceHandler converts uploaded documents into reference text for the subject editor.
type ReferenceHandler struct {
	service service.ExtractionService
	logger  zerolog.Logger
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(service service.ExtractionService, logger zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		service: service,
		logger:  logger.With().Str("component", "reference_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *ReferenceHandler) Register(router fiber.Router) {
	router.Post("/extract", h.extract)
}

func (h *ReferenceHandler) extract(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Extract(c.UserContext(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileRequired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, ai.ErrNoExtractableText):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrExtractionUnavailable):
			return utils.SendError(c, fiber.StatusBadGateway, "extraction unavailable")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("reference extraction failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "extraction failed")
		}
	}

	return utils.SendSuccess(c, "reference extracted", result)
}
