package docstore

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// List returns metadata for every live document in ascending id order.
// Unreadable records are logged and skipped.
func (s *Store) List(ctx context.Context) ([]model.DocumentMetadata, error) {
	out := make([]model.DocumentMetadata, 0)
	err := s.scan(ctx, func(id int64, base string) error {
		m, err := s.readMetadata(ctx, base)
		if err != nil {
			s.skip(id, base, err)
			return nil
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches query against live documents.
//
// A query that parses as an integer naming a live document returns exactly that document.
// Otherwise a document matches when the lowercased query is a substring of its lowercased
// title or, failing that, of its lowercased content. Each document appears at most once,
// in ascending id order.
func (s *Store) Search(ctx context.Context, query string) ([]model.DocumentMetadata, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(query), 10, 64); err == nil {
		m, err := s.GetMetadata(ctx, id)
		switch {
		case err == nil:
			return []model.DocumentMetadata{*m}, nil
		case errors.Is(err, repository.ErrNotFound):
		case errors.Is(err, repository.ErrStorage):
			s.skip(id, "", err)
		default:
			return nil, err
		}
	}

	needle := strings.ToLower(query)
	out := make([]model.DocumentMetadata, 0)
	err := s.scan(ctx, func(id int64, base string) error {
		m, err := s.readMetadata(ctx, base)
		if err != nil {
			s.skip(id, base, err)
			return nil
		}
		if strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
			return nil
		}
		body, err := s.readContent(ctx, base)
		if err != nil {
			s.skip(id, base, err)
			return nil
		}
		if strings.Contains(strings.ToLower(body), needle) {
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan visits a snapshot of the live ids in ascending order. Each visit holds the
// id's read lock and resolves the storage name afresh; ids deleted since the snapshot
// are skipped.
func (s *Store) scan(ctx context.Context, visit func(id int64, base string) error) error {
	s.indexMu.RLock()
	ids := make([]int64, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	s.indexMu.RUnlock()
	slices.Sort(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.visit(id, visit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) visit(id int64, visit func(id int64, base string) error) error {
	lock := s.locks.get(id)
	lock.RLock()
	defer lock.RUnlock()

	base, ok := s.lookup(id)
	if !ok {
		return nil
	}
	return visit(id, base)
}

func (s *Store) skip(id int64, base string, err error) {
	s.log.WithFields(logrus.Fields{
		"document_id": id,
		"key":         base,
		"error":       err.Error(),
	}).Warn("skipping unreadable document")
}
