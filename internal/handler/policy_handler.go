package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/service"
	"github.com/noah-isme/correcteur-api/internal/utils"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

// PolicyHandler exposes grading policy administration.
type PolicyHandler struct {
	service service.PolicyService
	logger  zerolog.Logger
}

// NewPolicyHandler constructs the handler.
func NewPolicyHandler(service service.PolicyService, logger zerolog.Logger) *PolicyHandler {
	return &PolicyHandler{
		service: service,
		logger:  logger.With().Str("component", "policy_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *PolicyHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/test", h.test)
	router.Get("/models", h.models)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *PolicyHandler) list(c *fiber.Ctx) error {
	policies, err := h.service.List(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "policies retrieved", policies)
}

func (h *PolicyHandler) models(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "models retrieved", fiber.Map{
		"models":  grading.SupportedModels(),
		"default": grading.DefaultModel,
	})
}

func (h *PolicyHandler) get(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "policy id is required")
	}

	policy, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "policy retrieved", policy)
}

func (h *PolicyHandler) create(c *fiber.Ctx) error {
	var payload dto.PolicyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	policy, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "policy created", policy)
}

func (h *PolicyHandler) update(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "policy id is required")
	}

	var payload dto.PolicyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	policy, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "policy updated", policy)
}

func (h *PolicyHandler) delete(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "policy id is required")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "policy deleted", nil)
}

func (h *PolicyHandler) test(c *fiber.Ctx) error {
	var payload dto.PolicyTestRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Test(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "policy evaluated", result)
}

func (h *PolicyHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, sendErr := sendValidationError(c, err); handled {
		return sendErr
	}

	switch {
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "template must not be empty")
	case errors.Is(err, service.ErrPolicyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPolicyInUse):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, ai.ErrEvaluationUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "model unavailable")
	case errors.Is(err, grading.ErrMalformedVerdict):
		return utils.SendError(c, fiber.StatusBadGateway, "model returned a malformed verdict")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("policy operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
