package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"archecho/internal/ai"
	"archecho/internal/config"
	"archecho/internal/database"
	"archecho/internal/database/migration"
	handlers "archecho/internal/http/handler"
	"archecho/internal/http/middleware"
	"archecho/internal/logger"
	"archecho/internal/otel"
	"archecho/internal/repository/postgres"
	"archecho/internal/service"
	"archecho/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, zlog); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		zlog.Fatal("failed to initialize object storage", zap.Error(err))
	}

	projectRepo := postgres.NewProjectPostgres(db)
	assets := service.NewAssetResolver(objStore, zlog)
	discoverySvc := service.NewDiscoveryService(projectRepo, objStore, zlog, cfg.Search.ResultLimit)
	projectSvc := service.NewProjectService(projectRepo, objStore, assets, zlog)
	extractor := ai.NewExtractor(cfg.OpenAI, zlog)
	conceptSvc := service.NewConceptService(projectRepo, objStore, extractor, zlog)
	linkSvc, err := service.NewLinker(projectRepo, objStore, zlog, cfg.Linker.IDPattern, cfg.Linker.BatchSize)
	if err != nil {
		zlog.Fatal("failed to build file linker", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	registry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		zlog.Fatal("failed to register metrics", zap.Error(err))
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zlog))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, registry, handlers.Services{
		Discovery: discoverySvc,
		Projects:  projectSvc,
		Concepts:  conceptSvc,
		Linker:    linkSvc,
	})

	addr := ":" + cfg.Port
	zlog.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.Env))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
