package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/venturelink/venturelink-backend/config"
	"github.com/venturelink/venturelink-backend/internal/app/controller"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	"github.com/venturelink/venturelink-backend/internal/catalog"
	"github.com/venturelink/venturelink-backend/internal/db"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	"github.com/venturelink/venturelink-backend/internal/router"
	"github.com/venturelink/venturelink-backend/internal/scheduler"
	"github.com/venturelink/venturelink-backend/internal/storage"
	"github.com/venturelink/venturelink-backend/internal/websocket"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"github.com/venturelink/venturelink-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VentureLink Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Redis (token blacklist)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Start WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	documentRepo := repository.NewDocumentRepository(db.GetDB())
	connectionRepo := repository.NewConnectionRepository(db.GetDB())
	conversationRepo := repository.NewConversationRepository(db.GetDB())
	milestoneRepo := repository.NewMilestoneRepository(db.GetDB())
	matchRepo := repository.NewMatchRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, businessRepo, hub)
	verificationService := service.NewVerificationService(businessRepo, documentRepo, catalog.Default(), notificationService)
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	businessService := service.NewBusinessService(businessRepo, userRepo, verificationService)
	conversationService := service.NewConversationService(db.GetDB(), conversationRepo, hub)
	connectionService := service.NewConnectionService(
		db.GetDB(),
		connectionRepo,
		businessRepo,
		matchRepo,
		milestoneRepo,
		verificationService,
		notificationService,
	)
	milestoneService := service.NewMilestoneService(
		milestoneRepo,
		connectionRepo,
		connectionService,
		conversationService,
		notificationService,
	)
	matchService := service.NewMatchService(matchRepo, userRepo, businessRepo, verificationService)
	reportService := service.NewReportService(businessRepo, verificationService)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.Secret)
	businessController := controller.NewBusinessController(businessService)
	verificationController := controller.NewVerificationController(verificationService)
	connectionController := controller.NewConnectionController(connectionService)
	conversationController := controller.NewConversationController(conversationService, hub, cfg.CORS.AllowedOrigins)
	milestoneController := controller.NewMilestoneController(milestoneService)
	matchController := controller.NewMatchController(matchService)
	notificationController := controller.NewNotificationController(notificationService)
	uploadController := controller.NewUploadController(s3Storage, cfg.Verification.MaxUploadSize)
	reportController := controller.NewReportController(reportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the document expiry scheduler
	expiryScheduler := scheduler.NewDocumentExpiryScheduler(documentRepo, cfg.Verification.DocumentValidity)
	if err := expiryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start document expiry scheduler", err)
	}
	defer expiryScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		businessController,
		verificationController,
		connectionController,
		conversationController,
		milestoneController,
		matchController,
		notificationController,
		uploadController,
		reportController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
