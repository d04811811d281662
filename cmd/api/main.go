package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/config"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/database"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/handler"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/middleware"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/router"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/service"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/ai"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Evaluation{}, &models.TeacherFeedback{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	cache, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, dashboard caching disabled")
		cache = nil
	} else {
		defer cache.Close()
	}

	store, err := buildAudioStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise audio storage: %v", err)
	}

	evaluator := buildEvaluator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	engine := service.NewEvaluationEngine(submissionRepo, evaluationRepo, evaluator, store, cfg.EvaluationTimeout, logger)

	authService := service.NewAuthService(userRepo, validate, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	}, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, store, engine, validate, logger)
	feedbackService := service.NewFeedbackService(submissionRepo, feedbackRepo, validate, logger)
	dashboardService := service.NewTeacherDashboardService(assignmentRepo, submissionRepo, userRepo, cache, cfg.DashboardCacheTTL, logger)
	adminService := service.NewAdminService(userRepo, assignmentRepo, submissionRepo, evaluationRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	teacherHandler := handler.NewTeacherHandler(dashboardService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxAudioBytes),
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		FeedbackHandler:   feedbackHandler,
		TeacherHandler:    teacherHandler,
		AdminHandler:      adminHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, engine)
}

func buildAudioStore(cfg config.Config, logger zerolog.Logger) (storage.AudioStore, error) {
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		return storage.NewCloudinaryStore(storage.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	}
	return storage.NewLocalStore(cfg.UploadDir, logger)
}

func buildEvaluator(cfg config.Config, logger zerolog.Logger) ai.SpeechEvaluator {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("openai api key not configured, submissions will not be evaluated")
		return nil
	}

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		APIKey:             cfg.OpenAIAPIKey,
		TranscriptionModel: cfg.TranscriptionModel,
		ScoringModel:       cfg.ScoringModel,
		Logger:             logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise evaluator, submissions will not be evaluated")
		return nil
	}
	return evaluator
}

func waitForShutdown(app *fiber.App, engine *service.EvaluationEngine) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	engine.Drain()
	log.Println("server stopped")
}
