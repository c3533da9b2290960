package repository

import (
	"context"

	"docrepo/internal/model"
)

// DocumentRepository is the document store contract.
// Implementations must be safe for concurrent use: operations on one id are
// serialized, operations on different ids may run in parallel.
type DocumentRepository interface {
	// Create allocates a fresh id, persists metadata and content, and returns the stored document.
	Create(ctx context.Context, title, author, content string, tags []string) (*model.Document, error)

	// Get returns the full document. It returns ErrNotFound for ids with no live document.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// GetMetadata returns the document without reading its content.
	GetMetadata(ctx context.Context, id int64) (*model.DocumentMetadata, error)

	// Update applies the non-nil fields of upd and bumps the version by one.
	Update(ctx context.Context, id int64, upd model.DocumentUpdate) (*model.Document, error)

	// Delete removes the document. It reports false, with no error, if nothing was live under id.
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteReturning is Delete that also returns the metadata live at removal time.
	// The metadata is nil when nothing was removed.
	DeleteReturning(ctx context.Context, id int64) (*model.DocumentMetadata, bool, error)

	// List returns metadata for every live document.
	List(ctx context.Context) ([]model.DocumentMetadata, error)

	// Search returns documents matching query, see the implementation for matching rules.
	Search(ctx context.Context, query string) ([]model.DocumentMetadata, error)

	// PingContext reports whether the backing storage is reachable.
	PingContext(ctx context.Context) error
}
