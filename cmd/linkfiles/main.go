package main

import (
	"context"
	"flag"
	"log"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"archecho/internal/config"
	"archecho/internal/database"
	"archecho/internal/database/migration"
	"archecho/internal/logger"
	"archecho/internal/repository/postgres"
	"archecho/internal/service"
	"archecho/internal/storage"
)

// linkfiles scans the whole project file bucket and records a file entry for
// every object whose name carries a known project id. Re-running it links
// newly uploaded objects; already linked objects are linked again, so run it
// against a fresh file table or accept the duplicates.
func main() {
	prefix := flag.String("prefix", "", "only link objects under this key prefix")
	flag.Parse()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

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

	linkSvc, err := service.NewLinker(postgres.NewProjectPostgres(db), objStore, zlog, cfg.Linker.IDPattern, cfg.Linker.BatchSize)
	if err != nil {
		zlog.Fatal("failed to build file linker", zap.Error(err))
	}

	objects, err := objStore.List(ctx, *prefix, 0)
	if err != nil {
		zlog.Fatal("failed to list bucket", zap.Error(err))
	}
	zlog.Info("bucket listed", zap.String("prefix", *prefix), zap.Int("objects", len(objects)))

	report, err := linkSvc.Run(ctx, objects)
	if err != nil {
		zlog.Fatal("linking failed", zap.Error(err))
	}

	zlog.Info("done",
		zap.Int("scanned", report.Scanned),
		zap.Int("linked", report.Linked),
		zap.Int("batches", report.Batches),
		zap.Strings("skipped_no_id", report.SkippedNoID),
		zap.Strings("skipped_unknown_project", report.SkippedUnknownProject))
}
