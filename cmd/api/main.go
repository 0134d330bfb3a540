package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/forkbook/backend/config"
	"github.com/forkbook/backend/internal/api"
	"github.com/forkbook/backend/internal/database"
	"github.com/forkbook/backend/internal/logger"
	"github.com/forkbook/backend/internal/middleware"
	"github.com/forkbook/backend/internal/router"
	"github.com/forkbook/backend/internal/server"
	"github.com/forkbook/backend/internal/service"
	"github.com/forkbook/backend/internal/storage"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var store storage.PictureStore
	switch cfg.StorageDriver {
	case "s3":
		store, err = storage.NewS3Store(context.Background(), cfg.S3Bucket, cfg.AWSRegion)
	default:
		store, err = storage.NewLocalStore(cfg.UploadDir)
	}
	if err != nil {
		logger.Error("failed to initialize picture storage", "error", err)
		os.Exit(1)
	}

	// Rate limiting is best-effort: without Redis the open endpoints
	// simply run unlimited.
	var rateLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, open endpoints run without rate limiting", "error", err)
	} else {
		rateLimiter = middleware.NewOpenEndpointRateLimiter(redisClient, cfg.RateLimitPerMinute)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, store, cfg.PerPage)

	authHandler := api.NewAuthHandler(authService)
	recipeHandler := api.NewRecipeHandler(recipeService, store)

	engine := router.Setup(authHandler, recipeHandler, authService, rateLimiter, cfg.AllowedOrigins)
	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
