package sqldb

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// NoopEvents is the journal used when no journal driver is configured.
// Appends are discarded and every history is empty.
type NoopEvents struct{}

var _ repository.EventRepository = NoopEvents{}

func (NoopEvents) Append(context.Context, *model.DocumentEvent) error { return nil }

func (NoopEvents) ListByDocument(context.Context, int64, repository.PageQuery) (*repository.PageResult[model.DocumentEvent], error) {
	return &repository.PageResult[model.DocumentEvent]{Items: []model.DocumentEvent{}}, nil
}

func (NoopEvents) PingContext(context.Context) error { return nil }
