// Package sqldb implements the document event journal over database/sql.
// Queries are written with '?' placeholders and rebound per dialect, so the same
// repository serves PostgreSQL (pgx) and SQLite (modernc).
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docrepo/internal/database"
	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// EventSQL is a database/sql implementation of repository.EventRepository.
// It uses parameterized queries and contains no business logic.
type EventSQL struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewEventSQL creates a new EventSQL repository.
func NewEventSQL(db *sql.DB, dialect database.Dialect) *EventSQL {
	return &EventSQL{db: db, dialect: dialect}
}

var _ repository.EventRepository = (*EventSQL)(nil)

// Append inserts one journal row.
func (r *EventSQL) Append(ctx context.Context, ev *model.DocumentEvent) error {
	const q = `
		INSERT INTO document_events (id, document_id, action, title, version, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(q),
		ev.ID,
		ev.DocumentID,
		string(ev.Action),
		ev.Title,
		ev.Version,
		ev.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListByDocument returns a document's events newest first using LIMIT/OFFSET pagination and a total count.
func (r *EventSQL) ListByDocument(ctx context.Context, documentID int64, pq repository.PageQuery) (*repository.PageResult[model.DocumentEvent], error) {
	const qCount = `SELECT COUNT(*) FROM document_events WHERE document_id = ?`
	var total int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(qCount), documentID).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	const qList = `
		SELECT id, document_id, action, title, version, occurred_at
		FROM document_events
		WHERE document_id = ?
		ORDER BY occurred_at DESC, version DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(qList), documentID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]model.DocumentEvent, 0)
	for rows.Next() {
		var (
			ev     model.DocumentEvent
			action string
			at     time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.DocumentID, &action, &ev.Title, &ev.Version, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Action = model.EventAction(action)
		ev.OccurredAt = at.UTC()
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return &repository.PageResult[model.DocumentEvent]{
		Items: items,
		Total: total,
	}, nil
}

// PingContext checks the journal database connection.
func (r *EventSQL) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
