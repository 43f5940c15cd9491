package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sjt-studio/internal/adapter"
	"sjt-studio/internal/adapter/sjtgen"
	"sjt-studio/internal/cache"
	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
	"sjt-studio/internal/handler"
	"sjt-studio/internal/logger"
	"sjt-studio/internal/middleware"
	"sjt-studio/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional reply cache
	var (
		replyCache domain.Cache
		pinger     handler.Pinger
	)
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
		replyCache, pinger = cacheAdapter, cacheAdapter
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	}

	generator, err := sjtgen.New(ctx, cfg, replyCache, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create SJT generator", zap.Error(err))
	}

	batchService := service.NewBatchService(generator, cfg, appLogger)
	studio := service.NewStudioService(batchService, cfg, appLogger)
	sjtHandler := handler.NewSJTHandler(studio, cfg.Batch.Profile, pinger, appLogger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: "Content-Disposition,X-SJT-Run-ID,X-SJT-Rows,X-SJT-Attempts,X-SJT-Failures,X-SJT-Skipped",
		MaxAge:        300,
	}))
	sjtHandler.Register(app)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("provider", cfg.LLM.Provider))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully")
}
