package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/service"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/utils"
)

// FeedbackHandler wires teacher feedback HTTP routes.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches feedback endpoints to the router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/feedback", h.provide)
}

func (h *FeedbackHandler) provide(c *fiber.Ctx) error {
	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.Provide(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback recorded", feedback)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionNotEvaluated):
		return utils.SendError(c, fiber.StatusConflict, "submission has not been evaluated yet")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
