// Package docstore implements repository.DocumentRepository on top of two storage
// collections: one metadata record and one content blob per document, both named
// "{id}_{sanitized title}".
//
// Mutations on one id are serialized through a per-id lock; different ids proceed in
// parallel. The store keeps an in-memory id → storage name index, rebuilt from the
// metadata collection by Open, so lookups never depend on a possibly stale title.
//
// Write ordering makes every mutation crash-safe:
//
//   - create writes content, then metadata; the metadata record is the commit point.
//   - update with a new title writes the new pair, switches the index, then removes
//     the old pair. A leftover old pair has a lower version and is dropped by Open.
//   - delete persists the id watermark, removes metadata (commit point), then content.
//     A leftover content blob without metadata is dropped by Open.
package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"docrepo/internal/logging"
	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/storage"
)

// Store is a concurrency-safe document store. Create it with Open.
type Store struct {
	meta    storage.Storage
	content storage.Storage
	log     logrus.FieldLogger
	now     func() time.Time

	locks  keyedLocks
	nextID atomic.Int64

	indexMu sync.RWMutex
	index   map[int64]string

	watermarkMu sync.Mutex
	watermark   int64
}

var _ repository.DocumentRepository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics (skipped records, cleanup failures).
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source for uploaded dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open scans both collections, repairs leftovers of interrupted mutations, and
// returns a store whose next id is greater than every id ever issued.
func Open(ctx context.Context, meta, content storage.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		meta:    meta,
		content: content,
		log:     logging.Discard(),
		now:     time.Now,
		index:   make(map[int64]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NextID returns the id the next Create will receive.
func (s *Store) NextID() int64 {
	return s.nextID.Load()
}

// Create allocates an id and persists the document.
func (s *Store) Create(ctx context.Context, title, author, content string, tags []string) (*model.Document, error) {
	id := s.nextID.Add(1) - 1

	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	doc := &model.Document{
		ID:           id,
		Title:        title,
		Author:       author,
		Content:      content,
		Tags:         cloneTags(tags),
		UploadedDate: s.now().UTC().Round(0),
		Version:      1,
	}
	base := baseName(id, title)
	if err := s.writeDocument(ctx, base, doc); err != nil {
		return nil, err
	}
	s.setIndex(id, base)

	s.log.WithFields(logrus.Fields{"document_id": id, "key": base}).Info("document created")
	return cloneDocument(doc), nil
}

// Get returns the full document.
func (s *Store) Get(ctx context.Context, id int64) (*model.Document, error) {
	if !s.issued(id) {
		return nil, repository.ErrNotFound
	}
	lock := s.locks.get(id)
	lock.RLock()
	defer lock.RUnlock()

	base, ok := s.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.readDocument(ctx, base)
}

// GetMetadata returns the metadata record only; the content blob is not touched.
func (s *Store) GetMetadata(ctx context.Context, id int64) (*model.DocumentMetadata, error) {
	if !s.issued(id) {
		return nil, repository.ErrNotFound
	}
	lock := s.locks.get(id)
	lock.RLock()
	defer lock.RUnlock()

	base, ok := s.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	m, err := s.readMetadata(ctx, base)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update applies the provided fields, bumps the version and persists the document.
// A title change relocates both records to the new storage name.
func (s *Store) Update(ctx context.Context, id int64, upd model.DocumentUpdate) (*model.Document, error) {
	if !s.issued(id) {
		return nil, repository.ErrNotFound
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	oldBase, ok := s.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	doc, err := s.readDocument(ctx, oldBase)
	if err != nil {
		return nil, err
	}
	previousContent := doc.Content

	if upd.Title != nil {
		doc.Title = *upd.Title
	}
	if upd.Content != nil {
		doc.Content = *upd.Content
	}
	if upd.Tags != nil {
		doc.Tags = cloneTags(upd.Tags)
	}
	doc.Version++

	newBase := baseName(id, doc.Title)
	if newBase == oldBase {
		err = s.rewrite(ctx, oldBase, doc, previousContent)
	} else {
		err = s.relocate(ctx, oldBase, newBase, doc)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"document_id": id, "key": newBase, "version": doc.Version}).Info("document updated")
	return cloneDocument(doc), nil
}

// Delete removes both records. It returns false when nothing was live under id.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	_, removed, err := s.remove(ctx, id)
	return removed, err
}

// DeleteReturning removes both records like Delete and also returns the metadata that
// was live at removal time, read under the same write lock.
func (s *Store) DeleteReturning(ctx context.Context, id int64) (*model.DocumentMetadata, bool, error) {
	return s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id int64) (*model.DocumentMetadata, bool, error) {
	if !s.issued(id) {
		return nil, false, nil
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	base, ok := s.lookup(id)
	if !ok {
		return nil, false, nil
	}
	removed, err := s.readMetadata(ctx, base)
	if err != nil {
		// an unreadable record is still removable; report what the name tells us
		removed = model.DocumentMetadata{ID: id}
	}
	if err := s.persistWatermark(ctx); err != nil {
		return nil, false, err
	}
	if err := s.meta.Delete(ctx, metadataKey(base)); err != nil {
		return nil, false, storageErr("delete metadata", err)
	}
	s.dropIndex(id)

	log := s.log.WithFields(logrus.Fields{"document_id": id, "key": base})
	if err := s.content.Delete(context.WithoutCancel(ctx), contentKey(base)); err != nil {
		log.WithField("error", err.Error()).Warn("content removal failed, blob will be swept on next open")
	}
	log.Info("document deleted")
	return &removed, true, nil
}

// PingContext checks both collections.
func (s *Store) PingContext(ctx context.Context) error {
	if err := s.meta.Ping(ctx); err != nil {
		return storageErr("ping metadata", err)
	}
	if err := s.content.Ping(ctx); err != nil {
		return storageErr("ping content", err)
	}
	return nil
}

// writeDocument writes a fresh record pair under base. If the metadata write fails the
// content blob is removed again, so base is either fully written or absent.
func (s *Store) writeDocument(ctx context.Context, base string, doc *model.Document) error {
	metaBytes, err := encodeMetadata(doc.Metadata())
	if err != nil {
		return storageErr("encode metadata", err)
	}
	if err := s.put(ctx, s.content, contentKey(base), []byte(doc.Content), "text/plain; charset=utf-8"); err != nil {
		return storageErr("write content", err)
	}
	if err := s.put(ctx, s.meta, metadataKey(base), metaBytes, "application/json"); err != nil {
		if delErr := s.content.Delete(context.WithoutCancel(ctx), contentKey(base)); delErr != nil {
			s.log.WithFields(logrus.Fields{"document_id": doc.ID, "key": base, "error": delErr.Error()}).
				Warn("rollback of content blob failed")
		}
		return storageErr("write metadata", err)
	}
	return nil
}

// rewrite persists doc over its existing records. Content is only rewritten when it changed;
// if the metadata write then fails, the previous content is put back.
func (s *Store) rewrite(ctx context.Context, base string, doc *model.Document, previousContent string) error {
	metaBytes, err := encodeMetadata(doc.Metadata())
	if err != nil {
		return storageErr("encode metadata", err)
	}
	contentChanged := doc.Content != previousContent
	if contentChanged {
		if err := s.put(ctx, s.content, contentKey(base), []byte(doc.Content), "text/plain; charset=utf-8"); err != nil {
			return storageErr("write content", err)
		}
	}
	if err := s.put(ctx, s.meta, metadataKey(base), metaBytes, "application/json"); err != nil {
		if contentChanged {
			if rbErr := s.put(context.WithoutCancel(ctx), s.content, contentKey(base), []byte(previousContent), "text/plain; charset=utf-8"); rbErr != nil {
				s.log.WithFields(logrus.Fields{"document_id": doc.ID, "key": base, "error": rbErr.Error()}).
					Error("restoring previous content failed")
			}
		}
		return storageErr("write metadata", err)
	}
	return nil
}

// relocate moves the document to newBase: write new pair, switch index, remove old pair.
func (s *Store) relocate(ctx context.Context, oldBase, newBase string, doc *model.Document) error {
	if err := s.writeDocument(ctx, newBase, doc); err != nil {
		return err
	}
	s.setIndex(doc.ID, newBase)

	// the new pair is committed; finish the cleanup even if the caller went away
	ctx = context.WithoutCancel(ctx)
	log := s.log.WithFields(logrus.Fields{"document_id": doc.ID, "key": oldBase})
	if err := s.meta.Delete(ctx, metadataKey(oldBase)); err != nil {
		log.WithField("error", err.Error()).Warn("removing relocated metadata failed, next open keeps the newer version")
	}
	if err := s.content.Delete(ctx, contentKey(oldBase)); err != nil {
		log.WithField("error", err.Error()).Warn("removing relocated content failed, next open sweeps it")
	}
	return nil
}

// persistWatermark records the highest issued id so a restart never reissues the id
// of a deleted document.
func (s *Store) persistWatermark(ctx context.Context) error {
	s.watermarkMu.Lock()
	defer s.watermarkMu.Unlock()

	high := s.nextID.Load() - 1
	if high <= s.watermark {
		return nil
	}
	if err := s.put(ctx, s.meta, watermarkKey, []byte(fmt.Sprintf("%d\n", high)), "text/plain"); err != nil {
		return storageErr("write watermark", err)
	}
	s.watermark = high
	return nil
}

func (s *Store) readDocument(ctx context.Context, base string) (*model.Document, error) {
	m, err := s.readMetadata(ctx, base)
	if err != nil {
		return nil, err
	}
	body, err := s.readContent(ctx, base)
	if err != nil {
		return nil, err
	}
	return &model.Document{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		Content:      body,
		Tags:         m.Tags,
		UploadedDate: m.UploadedDate,
		Version:      m.Version,
	}, nil
}

func (s *Store) readMetadata(ctx context.Context, base string) (model.DocumentMetadata, error) {
	data, err := s.readObject(ctx, s.meta, metadataKey(base))
	if err != nil {
		return model.DocumentMetadata{}, storageErr("read metadata", err)
	}
	m, err := decodeMetadata(data)
	if err != nil {
		return model.DocumentMetadata{}, storageErr("decode "+metadataKey(base), err)
	}
	return m, nil
}

func (s *Store) readContent(ctx context.Context, base string) (string, error) {
	body, err := s.readObject(ctx, s.content, contentKey(base))
	if err != nil {
		return "", storageErr("read content", err)
	}
	return string(body), nil
}

func (s *Store) readObject(ctx context.Context, st storage.Storage, key string) ([]byte, error) {
	rc, _, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Store) put(ctx context.Context, st storage.Storage, key string, data []byte, contentType string) error {
	_, err := st.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	return err
}

// issued reports whether id was ever handed out. Unissued ids never get a lock entry.
func (s *Store) issued(id int64) bool {
	return id > 0 && id < s.nextID.Load()
}

func (s *Store) lookup(id int64) (string, bool) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	base, ok := s.index[id]
	return base, ok
}

func (s *Store) setIndex(id int64, base string) {
	s.indexMu.Lock()
	s.index[id] = base
	s.indexMu.Unlock()
}

func (s *Store) dropIndex(id int64) {
	s.indexMu.Lock()
	delete(s.index, id)
	s.indexMu.Unlock()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", repository.ErrStorage, op, err)
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return append(make([]string, 0, len(tags)), tags...)
}

func cloneDocument(d *model.Document) *model.Document {
	c := *d
	c.Tags = cloneTags(d.Tags)
	return &c
}
