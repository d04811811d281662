package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/service"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/utils"
)

// TeacherHandler wires the teacher dashboard HTTP routes.
type TeacherHandler struct {
	dashboard service.TeacherDashboardService
	logger    zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(dashboard service.TeacherDashboardService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		dashboard: dashboard,
		logger:    logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches teacher endpoints to the router group.
func (h *TeacherHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
	router.Get("/students", h.listStudents)
}

func (h *TeacherHandler) getDashboard(c *fiber.Ctx) error {
	dashboard, err := h.dashboard.GetDashboard(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *TeacherHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.dashboard.ListStudents(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *TeacherHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
