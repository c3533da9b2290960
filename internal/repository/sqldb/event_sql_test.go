package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrepo/internal/database"
	"docrepo/internal/database/migration"
	"docrepo/internal/model"
	"docrepo/internal/repository"
)

var eventColumns = []string{"id", "document_id", "action", "title", "version", "occurred_at"}

func TestEventSQL_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventSQL(db, database.DialectPostgres)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := &model.DocumentEvent{
		ID:         "6f1c3f43-6d9e-4c36-9b8f-3d3f4a0f2d11",
		DocumentID: 4,
		Action:     model.EventUpdated,
		Title:      "Budget",
		Version:    2,
		OccurredAt: at,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO document_events \(.+\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
			WithArgs(ev.ID, ev.DocumentID, "updated", ev.Title, ev.Version, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Append(ctx, ev))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO document_events").WillReturnError(errors.New("duplicate key"))

		err := repo.Append(ctx, ev)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "append event: duplicate key")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventSQL_ListByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventSQL(db, database.DialectPostgres)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM document_events WHERE document_id = \$1`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT (.+) FROM document_events WHERE document_id = \$1 ORDER BY (.+) LIMIT \$2 OFFSET \$3`).
			WithArgs(int64(4), 2, 0).
			WillReturnRows(sqlmock.NewRows(eventColumns).
				AddRow("b", int64(4), "updated", "Budget v2", 2, at.Add(time.Minute)).
				AddRow("a", int64(4), "created", "Budget", 1, at))

		res, err := repo.ListByDocument(ctx, 4, repository.PageQuery{Limit: 2, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, model.EventUpdated, res.Items[0].Action)
		assert.Equal(t, "Budget", res.Items[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("db down"))

		res, err := repo.ListByDocument(ctx, 4, repository.PageQuery{Limit: 10})
		assert.Error(t, err)
		assert.Nil(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM document_events").
			WillReturnRows(sqlmock.NewRows(eventColumns).AddRow("a", "not-a-number", "created", "t", 1, at))

		res, err := repo.ListByDocument(ctx, 4, repository.PageQuery{Limit: 10})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "scan event")
		assert.Nil(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventSQL_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	require.NoError(t, migration.EnsureMigrated(ctx, db, database.DialectSQLite, log, "test"))

	repo := NewEventSQL(db, database.DialectSQLite)
	require.NoError(t, repo.PingContext(ctx))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	appended := []model.DocumentEvent{
		{ID: "e1", DocumentID: 1, Action: model.EventCreated, Title: "One", Version: 1, OccurredAt: base},
		{ID: "e2", DocumentID: 1, Action: model.EventUpdated, Title: "One v2", Version: 2, OccurredAt: base.Add(time.Second)},
		{ID: "e3", DocumentID: 2, Action: model.EventCreated, Title: "Two", Version: 1, OccurredAt: base.Add(2 * time.Second)},
		{ID: "e4", DocumentID: 1, Action: model.EventDeleted, Title: "One v2", Version: 2, OccurredAt: base.Add(3 * time.Second)},
	}
	for i := range appended {
		require.NoError(t, repo.Append(ctx, &appended[i]))
	}

	res, err := repo.ListByDocument(ctx, 1, repository.PageQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	want := []model.DocumentEvent{appended[3], appended[1]}
	if diff := cmp.Diff(want, res.Items); diff != "" {
		t.Errorf("ListByDocument() mismatch (-want +got):\n%s", diff)
	}

	res, err = repo.ListByDocument(ctx, 1, repository.PageQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "e1", res.Items[0].ID)

	res, err = repo.ListByDocument(ctx, 99, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestNoopEvents(t *testing.T) {
	ctx := context.Background()
	var repo repository.EventRepository = NoopEvents{}

	assert.NoError(t, repo.Append(ctx, &model.DocumentEvent{ID: "x", DocumentID: 1}))
	res, err := repo.ListByDocument(ctx, 1, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)
	assert.NoError(t, repo.PingContext(ctx))
}
