package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/service"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/utils"
)

// AdminHandler wires platform-wide administrative listings.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches admin endpoints to the router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Get("/assignments", h.listAssignments)
	router.Get("/submissions", h.listSubmissions)
	router.Get("/evaluations", h.listEvaluations)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AdminHandler) listAssignments(c *fiber.Ctx) error {
	assignments, err := h.service.ListAssignments(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AdminHandler) listSubmissions(c *fiber.Ctx) error {
	submissions, err := h.service.ListSubmissions(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AdminHandler) listEvaluations(c *fiber.Ctx) error {
	evaluations, err := h.service.ListEvaluations(c.Context(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
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
