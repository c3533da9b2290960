package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docrepo/internal/database"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_document_events",
		SQL: `CREATE TABLE IF NOT EXISTS document_events (
  id          UUID        PRIMARY KEY,
  document_id BIGINT      NOT NULL CHECK (document_id > 0),
  action      TEXT        NOT NULL,
  title       TEXT        NOT NULL,
  version     INTEGER     NOT NULL CHECK (version >= 1),
  occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_document_events_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_events_document_id ON document_events (document_id, occurred_at DESC);`,
	},
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_document_events",
		SQL: `CREATE TABLE IF NOT EXISTS document_events (
  id          TEXT     PRIMARY KEY,
  document_id INTEGER  NOT NULL CHECK (document_id > 0),
  action      TEXT     NOT NULL,
  title       TEXT     NOT NULL,
  version     INTEGER  NOT NULL CHECK (version >= 1),
  occurred_at DATETIME NOT NULL
);`,
	},
	{
		Name: "create_index_document_events_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_events_document_id ON document_events (document_id, occurred_at DESC);`,
	},
}

var sentinelQueries = map[database.Dialect]string{
	database.DialectPostgres: "SELECT to_regclass('public.document_events') IS NOT NULL",
	database.DialectSQLite:   "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'document_events')",
}

func stepsFor(d database.Dialect) []migrationStep {
	if d == database.DialectSQLite {
		return sqliteSteps
	}
	return postgresSteps
}

// EnsureMigrated checks if the 'document_events' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect database.Dialect, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	log = log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
		"dialect":   string(dialect),
	})

	log.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking journal schema")

	query, ok := sentinelQueries[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	var exists bool
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.WithFields(logrus.Fields{
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms":   time.Since(start).Milliseconds(),
		}).Error("journal migration failed")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	log.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("migrating journal schema")

	for _, step := range stepsFor(dialect) {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).Error("journal migration failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("journal schema migrated")

	return nil
}
