package migration

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrepo/internal/database"
)

func events(hook *logtest.Hook) []string {
	out := make([]string, 0, len(hook.AllEntries()))
	for _, e := range hook.AllEntries() {
		if ev, ok := e.Data["event"].(string); ok {
			out = append(out, ev)
		}
	}
	return out
}

func TestEnsureMigrated_Postgres(t *testing.T) {
	sentinel := regexp.QuoteMeta(sentinelQueries[database.DialectPostgres])

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := logtest.NewNullLogger()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(context.Background(), db, database.DialectPostgres, logger, "db.local")
		assert.NoError(t, err)
		assert.Equal(t, []string{"db_migration_check", "db_migration_skip"}, events(hook))
		assert.Equal(t, "db.local", hook.LastEntry().Data["db_host"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs every step", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := logtest.NewNullLogger()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS document_events").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_document_events_document_id").WillReturnResult(sqlmock.NewResult(0, 0))

		err = EnsureMigrated(context.Background(), db, database.DialectPostgres, logger, "db.local")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"db_migration_check",
			"db_migration_start",
			"db_migration_step",
			"db_migration_step",
			"db_migration_success",
		}, events(hook))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := logtest.NewNullLogger()

		mock.ExpectQuery(sentinel).WillReturnError(errors.New("connection refused"))

		err = EnsureMigrated(context.Background(), db, database.DialectPostgres, logger, "db.local")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check sentinel table")
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := logtest.NewNullLogger()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS document_events").WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(context.Background(), db, database.DialectPostgres, logger, "db.local")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migration step create_table_document_events failed")
		assert.Equal(t, "create_table_document_events", hook.LastEntry().Data["migration_step"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureMigrated_UnsupportedDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	logger, _ := logtest.NewNullLogger()

	err = EnsureMigrated(context.Background(), db, database.Dialect("oracle"), logger, "")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SQLite(t *testing.T) {
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()
	logger, hook := logtest.NewNullLogger()
	ctx := context.Background()

	require.NoError(t, EnsureMigrated(ctx, db, database.DialectSQLite, logger, "journal.db"))
	assert.Contains(t, events(hook), "db_migration_success")

	hook.Reset()
	require.NoError(t, EnsureMigrated(ctx, db, database.DialectSQLite, logger, "journal.db"))
	assert.Contains(t, events(hook), "db_migration_skip")

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_events").Scan(&n))
	assert.Zero(t, n)
}
