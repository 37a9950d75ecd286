package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wkim/teamshop-backend/config"
	"github.com/wkim/teamshop-backend/internal/app/controller"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/app/service"
	"github.com/wkim/teamshop-backend/internal/db"
	"github.com/wkim/teamshop-backend/internal/middleware"
	"github.com/wkim/teamshop-backend/internal/router"
	"github.com/wkim/teamshop-backend/internal/scheduler"
	"github.com/wkim/teamshop-backend/internal/storage"
	"github.com/wkim/teamshop-backend/internal/ws"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"github.com/wkim/teamshop-backend/pkg/mailer"
	"github.com/wkim/teamshop-backend/pkg/redis"
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

	logger.Info("Starting TEAMSHOP Backend Server", map[string]interface{}{
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

	// Initialize redis (optional, degrades to no token revocation)
	if err := redis.Init(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		logger.Warn("Redis unavailable, logout revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	tokenRepo := repository.NewLoginTokenRepository(db.GetDB())
	itemRepo := repository.NewItemRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	playerRepo := repository.NewPlayerRepository(db.GetDB())

	// Order event feed for admin dashboards
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	m := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Password: cfg.SMTP.Password,
	})
	authService := service.NewAuthService(userRepo, tokenRepo, m, cfg.Auth, cfg.Server.FrontendURL)
	catalogService := service.NewCatalogService(itemRepo)
	cartService := service.NewCartService(orderRepo, itemRepo, playerRepo)
	orderService := service.NewOrderService(orderRepo, m, hub, cfg.Auth.NotifyEmail)
	playerService := service.NewPlayerService(playerRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	itemController := controller.NewItemController(catalogService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, hub)
	playerController := controller.NewPlayerController(playerService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	// Background maintenance jobs
	maintenance := scheduler.NewMaintenanceScheduler(tokenRepo, orderRepo)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		itemController,
		cartController,
		orderController,
		playerController,
		uploadController,
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
