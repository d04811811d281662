package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/config"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/handler"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/middleware"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	FeedbackHandler   *handler.FeedbackHandler
	TeacherHandler    *handler.TeacherHandler
	AdminHandler      *handler.AdminHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(api.Group("/auth", jwtMiddleware))
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.TeacherHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.TeacherHandler.Register(teacher)
		if deps.FeedbackHandler != nil {
			deps.FeedbackHandler.Register(teacher)
		}
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}
}
