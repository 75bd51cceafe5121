package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/service"
	"github.com/noah-isme/correcteur-api/internal/utils"
)

// StudentHandler serves the anonymous student surface: subject access by code and answer submission.
type StudentHandler struct {
	subjects    service.SubjectService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(subjects service.SubjectService, submissions service.SubmissionService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		subjects:    subjects,
		submissions: submissions,
		logger:      logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires the handler endpoints. submitGuards run before the submit endpoint, typically a rate limiter.
func (h *StudentHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	router.Get("/subjects/code/:code", h.getSubject)

	submit := append(append([]fiber.Handler{}, submitGuards...), h.submit)
	router.Post("/submit", submit...)
}

func (h *StudentHandler) getSubject(c *fiber.Ctx) error {
	subject, err := h.subjects.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "subject not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("subject lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return utils.SendSuccess(c, "subject retrieved", subject)
}

// submit answers 200 for graded and degraded answers alike; only request and persistence failures are errors.
func (h *StudentHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submissions.Submit(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "answer graded"
	if result.Score == nil {
		message = "answer saved, evaluation unavailable"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, sendErr := sendValidationError(c, err); handled {
		return sendErr
	}

	switch {
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "student name and answer must not be empty")
	case errors.Is(err, service.ErrSubmissionMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound), errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("answer submission failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "answer could not be saved, please retry")
	}
}
