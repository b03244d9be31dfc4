// Package migration creates the extraction history schema on first start.
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

// sentinelTable is checked to decide whether the schema already exists.
const sentinelTable = "public.extractions"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_extractions",
		SQL: `CREATE TABLE IF NOT EXISTS extractions (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  filename      TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL DEFAULT '',
  size          BIGINT      NOT NULL CHECK (size >= 0),
  success       BOOLEAN     NOT NULL,
  error_kind    TEXT        NOT NULL DEFAULT '',
  error_message TEXT        NOT NULL DEFAULT '',
  attempts      INTEGER     NOT NULL DEFAULT 0,
  duration_ms   BIGINT      NOT NULL DEFAULT 0,
  result        JSONB       NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_extractions_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions (created_at DESC);`,
	},
	{
		Name: "create_index_extractions_error_kind",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_extractions_error_kind ON extractions (error_kind) WHERE NOT success;`,
	},
}

// EnsureMigrated runs every step unless the extractions table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db.migration_check")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error("db.migration_failed",
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db.migration_skip",
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db.migration_start", zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db.migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db.migration_step",
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db.migration_success", zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
