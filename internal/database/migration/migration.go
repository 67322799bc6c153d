package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_projects",
		SQL: `CREATE TABLE IF NOT EXISTS projects (
  id         TEXT        PRIMARY KEY,
  data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_projects_data",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_projects_data ON projects USING GIN (data);`,
	},
	{
		Name: "create_table_project_files",
		SQL: `CREATE TABLE IF NOT EXISTS project_files (
  id            UUID        PRIMARY KEY,
  project_id    TEXT        NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
  name          TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL,
  type          TEXT        NOT NULL,
  url           TEXT        NOT NULL,
  thumbnail_url TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_project_files_project_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_project_files_project_id ON project_files (project_id);`,
	},
	{
		Name: "create_index_project_files_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_project_files_type ON project_files (type);`,
	},
}

// EnsureMigrated checks whether the projects table exists and applies the
// schema steps if it doesn't. Steps are individually idempotent.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.projects') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return fmt.Errorf("check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	log.Info("running schema migration", zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				zap.String("step", step.Name), zap.Error(err))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("migration step applied",
			zap.String("step", step.Name),
			zap.Duration("elapsed", time.Since(stepStart)))
	}

	log.Info("schema migration complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}
