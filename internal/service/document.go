package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryResult is the service-level DTO for a page of journal events.
type HistoryResult struct {
	Items []model.DocumentEvent `json:"data"`
	Total int                   `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Create validates the request and stores a new document at version 1.
	Create(ctx context.Context, req CreateDocumentRequest) (*model.Document, error)

	// Get returns a single document with its content.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// GetMetadata returns a document without its content.
	GetMetadata(ctx context.Context, id int64) (*model.DocumentMetadata, error)

	// Update applies a partial update and returns the new version.
	Update(ctx context.Context, id int64, upd model.DocumentUpdate) (*model.Document, error)

	// Delete removes a document. It reports false when no document was live under id.
	Delete(ctx context.Context, id int64) (bool, error)

	// List returns metadata of every live document in ascending id order.
	List(ctx context.Context) ([]model.DocumentMetadata, error)

	// Search returns metadata of documents matching query.
	Search(ctx context.Context, query string) ([]model.DocumentMetadata, error)

	// History returns the journal of a document, newest first.
	History(ctx context.Context, id int64, limit, offset int) (*HistoryResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo    repository.DocumentRepository
	events  repository.EventRepository
	log     logrus.FieldLogger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewDocumentService constructs a new DocumentService. A nil metrics disables counting.
func NewDocumentService(repo repository.DocumentRepository, events repository.EventRepository, log logrus.FieldLogger, metrics *Metrics) DocumentService {
	return &documentService{
		repo:    repo,
		events:  events,
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("docrepo/internal/service"),
		now:     time.Now,
	}
}

func (s *documentService) Create(ctx context.Context, req CreateDocumentRequest) (doc *model.Document, err error) {
	ctx, done := s.start(ctx, "create")
	defer done(&err)

	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	doc, err = s.repo.Create(ctx, req.Title, req.Author, req.Content, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("document.id", doc.ID))
	s.record(ctx, model.EventCreated, doc.ID, doc.Title, doc.Version)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id int64) (doc *model.Document, err error) {
	ctx, done := s.start(ctx, "get", attribute.Int64("document.id", id))
	defer done(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}
	doc, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return doc, nil
}

func (s *documentService) GetMetadata(ctx context.Context, id int64) (meta *model.DocumentMetadata, err error) {
	ctx, done := s.start(ctx, "get_metadata", attribute.Int64("document.id", id))
	defer done(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}
	meta, err = s.repo.GetMetadata(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return meta, nil
}

func (s *documentService) Update(ctx context.Context, id int64, upd model.DocumentUpdate) (doc *model.Document, err error) {
	ctx, done := s.start(ctx, "update", attribute.Int64("document.id", id))
	defer done(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := validateUpdate(upd); err != nil {
		return nil, invalid(err)
	}
	doc, err = s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.record(ctx, model.EventUpdated, doc.ID, doc.Title, doc.Version)
	return doc, nil
}

// Delete journals the title and version the store saw when it removed the document.
func (s *documentService) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	ctx, done := s.start(ctx, "delete", attribute.Int64("document.id", id))
	defer done(&err)

	if err := validateID(id); err != nil {
		return false, err
	}
	meta, deleted, err := s.repo.DeleteReturning(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	if deleted {
		s.record(ctx, model.EventDeleted, id, meta.Title, meta.Version)
	}
	return deleted, nil
}

func (s *documentService) List(ctx context.Context) (items []model.DocumentMetadata, err error) {
	ctx, done := s.start(ctx, "list")
	defer done(&err)

	items, err = s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("documents.count", len(items)))
	return items, nil
}

func (s *documentService) Search(ctx context.Context, query string) (items []model.DocumentMetadata, err error) {
	ctx, done := s.start(ctx, "search")
	defer done(&err)

	if err := validateQuery(query); err != nil {
		return nil, invalid(err)
	}
	items, err = s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("documents.count", len(items)))
	return items, nil
}

func (s *documentService) History(ctx context.Context, id int64, limit, offset int) (res *HistoryResult, err error) {
	ctx, done := s.start(ctx, "history", attribute.Int64("document.id", id))
	defer done(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	page, err := s.events.ListByDocument(ctx, id, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("document history: %w", err)
	}
	return &HistoryResult{Items: page.Items, Total: page.Total}, nil
}

// start opens a span for op. The returned func ends it and counts the outcome;
// call it deferred with the address of the named error result.
func (s *documentService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, "DocumentService."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		err := *errp
		s.metrics.observe(op, err)
		if err != nil && !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// record appends a journal entry. The store already committed the mutation, so a
// journal failure is logged and not returned.
func (s *documentService) record(ctx context.Context, action model.EventAction, id int64, title string, version int) {
	ev := &model.DocumentEvent{
		ID:         uuid.NewString(),
		DocumentID: id,
		Action:     action,
		Title:      title,
		Version:    version,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.WithFields(logrus.Fields{
			"document_id": id,
			"action":      string(action),
			"error":       err.Error(),
		}).Warn("journal append failed")
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", ErrInvalidInput)
	}
	return nil
}
