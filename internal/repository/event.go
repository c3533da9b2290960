package repository

import (
	"context"

	"docrepo/internal/model"
)

// EventRepository persists the append-only document change journal.
// No business logic here, strictly persistence operations.
type EventRepository interface {
	// Append stores one event. The caller provides ID and OccurredAt.
	Append(ctx context.Context, ev *model.DocumentEvent) error

	// ListByDocument returns a page of events for a document, newest first, with the total count.
	ListByDocument(ctx context.Context, documentID int64, pq PageQuery) (*PageResult[model.DocumentEvent], error)

	// PingContext reports whether the journal database is reachable.
	PingContext(ctx context.Context) error
}
