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

	"github.com/noah-isme/gema-challenge-api/internal/config"
	"github.com/noah-isme/gema-challenge-api/internal/database"
	"github.com/noah-isme/gema-challenge-api/internal/handler"
	"github.com/noah-isme/gema-challenge-api/internal/middleware"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
	"github.com/noah-isme/gema-challenge-api/internal/router"
	"github.com/noah-isme/gema-challenge-api/internal/scheduler"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	cloud "github.com/noah-isme/gema-challenge-api/pkg/cloudinary"
	"github.com/noah-isme/gema-challenge-api/pkg/telegram"
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

	if err := db.AutoMigrate(&models.Participant{}, &models.Problem{}, &models.Submission{}, &models.Conversation{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.GatewayBaseURL != "" {
		gatewayClient, err := telegram.New(telegram.Config{
			BaseURL: cfg.GatewayBaseURL,
			Token:   cfg.GatewayToken,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create gateway client: %v", err)
		}
		notifier = gatewayClient
	} else {
		logger.Warn().Msg("no gateway configured, chat notifications are disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	templates := service.DefaultTemplates()

	participantRepo := repository.NewParticipantRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	participantService := service.NewParticipantService(participantRepo, validate, cfg.OperatorChatID, logger)
	ledgerService := service.NewLedgerService(participantRepo, logger)
	catalogService := service.NewCatalogService(problemRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, participantRepo, conversationRepo, validate, uploader, notifier, templates, cfg.OperatorChatID, logger)
	dispatchService := service.NewDispatchService(catalogService, participantRepo, notifier, templates, logger)
	sweepService := service.NewSweepService(problemRepo, submissionRepo, notifier, templates, cfg.PenaltyCoins, logger)
	reminderService := service.NewReminderService(problemRepo, submissionRepo, participantRepo, notifier, templates, cfg.ReminderWindow, logger)
	leaderboardService := service.NewLeaderboardService(participantRepo, redisClient, cfg.LeaderboardCacheTTL, cfg.LeaderboardSize, logger)
	statsService := service.NewStatsService(participantRepo, problemRepo, submissionRepo, logger)
	conversationService := service.NewConversationService(conversationRepo, participantRepo, submissionService, validate, templates, cfg.OperatorChatID, logger)

	participantHandler := handler.NewParticipantHandler(participantService, submissionService, logger)
	problemHandler := handler.NewProblemHandler(catalogService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	gatewayHandler := handler.NewGatewayHandler(conversationService, logger)
	adminProblemHandler := handler.NewAdminProblemHandler(catalogService, dispatchService, logger)
	adminParticipantHandler := handler.NewAdminParticipantHandler(ledgerService, validate, logger)
	reviewHandler := handler.NewReviewHandler(submissionService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ParticipantHandler:      participantHandler,
		ProblemHandler:          problemHandler,
		SubmissionHandler:       submissionHandler,
		LeaderboardHandler:      leaderboardHandler,
		GatewayHandler:          gatewayHandler,
		AdminProblemHandler:     adminProblemHandler,
		AdminParticipantHandler: adminParticipantHandler,
		ReviewHandler:           reviewHandler,
		StatsHandler:            statsHandler,
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
		GatewayMiddleware:       middleware.GatewayAuth(cfg.GatewayToken),
	})

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	jobs := scheduler.New(
		dispatchService,
		sweepService,
		reminderService,
		cfg.DispatchInterval,
		cfg.SweepInterval,
		cfg.ReminderInterval,
		logger,
	)
	go jobs.Run(backgroundCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopBackground)
}

func waitForShutdown(app *fiber.App, stopBackground context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
