package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/correcteur-api/internal/config"
	"github.com/noah-isme/correcteur-api/internal/database"
	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/handler"
	"github.com/noah-isme/correcteur-api/internal/middleware"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/internal/router"
	"github.com/noah-isme/correcteur-api/internal/service"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/codegen"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	ctx := context.Background()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, subject cache disabled")
	} else if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, answer events disabled")
	} else if natsConn != nil {
		defer natsConn.Drain()
	}

	defaultModel := cfg.DefaultModel
	if defaultModel == "" && cfg.AIProvider == "openai" {
		defaultModel = grading.ModelGPT4oMini
	}
	fallback, err := grading.LoadDefaultPolicy(cfg.DefaultTemplateFile, defaultModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load default grading policy")
	}

	models := ai.ModelRouter{}
	var extractor service.ReferenceExtractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiInvoker(ctx, ai.GeminiConfig{APIKey: cfg.GeminiAPIKey, Logger: logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create gemini invoker")
		}
		defer gemini.Close()
		models.Gemini = gemini
		extractor = gemini
	}
	if cfg.OpenAIAPIKey != "" {
		openAI, err := ai.NewOpenAIInvoker(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Logger: logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create openai invoker")
		}
		models.OpenAI = openAI
	}
	if models.Gemini == nil && models.OpenAI == nil {
		logger.Warn().Msg("no ai provider key configured, answers will be stored as degraded")
	}

	validate := dto.NewValidator()
	parser := grading.NewVerdictParser()
	codes := codegen.New(nil)

	policyRepo := repository.NewPolicyRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	resolver := grading.NewResolver(service.NewPolicySource(policyRepo), fallback, logger)
	subjectCache := service.NewSubjectCache(redisClient, cfg.SubjectCacheTTL, logger)
	events := service.NewNATSAnswerPublisher(natsConn, cfg.NATSSubject)

	policyService := service.NewPolicyService(policyRepo, models, parser, cfg.AcceptanceThreshold, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, policyRepo, codes, subjectCache, validate, logger, service.SubjectServiceConfig{
		CodeAttempts: cfg.CodeAttempts,
	})
	submissionService := service.NewSubmissionService(subjectRepo, submissionRepo, resolver, models, parser, events, validate, logger, service.SubmissionServiceConfig{
		AcceptanceThreshold: cfg.AcceptanceThreshold,
	})
	extractionService := service.NewExtractionService(extractor, cfg.UploadMaxBytes, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: logger, AccessLog: cfg.AppEnv != "test"})
	router.Register(app, cfg, router.Dependencies{
		PolicyHandler:     handler.NewPolicyHandler(policyService, logger),
		SubjectHandler:    handler.NewSubjectHandler(subjectService, logger),
		StudentHandler:    handler.NewStudentHandler(subjectService, submissionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ReferenceHandler:  handler.NewReferenceHandler(extractionService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		SubmitLimiter:     middleware.RateLimit("submit", cfg.SubmitRateLimitMax, cfg.SubmitRateLimitWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
