package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"docrepo/internal/storage"
)

type indexCandidate struct {
	base    string
	version int
}

// load rebuilds the index and the id counter from the persisted collections.
//
// Every "{id}_" key in either collection counts toward the next id, including
// malformed records and orphaned blobs, and so does the persisted watermark.
// Interrupted mutations are repaired: of two metadata records for one id the
// higher version wins, and content blobs without a metadata record are removed.
func (s *Store) load(ctx context.Context) error {
	metaObjs, err := s.meta.List(ctx, "")
	if err != nil {
		return storageErr("list metadata", err)
	}
	contentObjs, err := s.content.List(ctx, "")
	if err != nil {
		return storageErr("list content", err)
	}

	var maxID int64
	best := make(map[int64]indexCandidate)
	metaBases := make(map[string]bool)

	for _, obj := range metaObjs {
		if obj.Key == watermarkKey {
			wm, err := s.readWatermark(ctx)
			if err != nil {
				return err
			}
			s.watermark = wm
			continue
		}
		id, base, ok := parseKey(obj.Key, metadataExt)
		if !ok {
			continue
		}
		maxID = max(maxID, id)
		metaBases[base] = true

		log := s.log.WithFields(logrus.Fields{"document_id": id, "key": obj.Key})
		m, err := s.readMetadata(ctx, base)
		if err != nil {
			log.WithField("error", err.Error()).Warn("skipping unreadable metadata record")
			continue
		}
		if m.ID != id {
			log.WithField("record_id", m.ID).Warn("skipping metadata record whose id disagrees with its name")
			continue
		}

		found := indexCandidate{base: base, version: m.Version}
		cur, seen := best[id]
		if !seen {
			best[id] = found
			continue
		}
		keep, drop := cur, found
		if found.version > cur.version {
			keep, drop = found, cur
		}
		best[id] = keep
		delete(metaBases, drop.base)
		s.removeStale(ctx, id, drop.base)
	}

	for _, obj := range contentObjs {
		id, base, ok := parseKey(obj.Key, contentExt)
		if !ok {
			continue
		}
		maxID = max(maxID, id)
		if metaBases[base] {
			continue
		}
		log := s.log.WithFields(logrus.Fields{"document_id": id, "key": obj.Key})
		log.Info("removing orphaned content blob")
		if err := s.content.Delete(ctx, obj.Key); err != nil {
			log.WithField("error", err.Error()).Warn("removing orphaned content failed")
		}
	}

	for id, c := range best {
		s.index[id] = c.base
	}
	s.nextID.Store(max(maxID, s.watermark) + 1)

	s.log.WithFields(logrus.Fields{
		"documents": len(s.index),
		"next_id":   s.nextID.Load(),
	}).Info("document store loaded")
	return nil
}

// removeStale deletes the older record pair left behind by an interrupted relocation.
func (s *Store) removeStale(ctx context.Context, id int64, base string) {
	log := s.log.WithFields(logrus.Fields{"document_id": id, "key": base})
	log.Info("removing superseded record pair")
	if err := s.meta.Delete(ctx, metadataKey(base)); err != nil {
		log.WithField("error", err.Error()).Warn("removing superseded metadata failed")
	}
	if err := s.content.Delete(ctx, contentKey(base)); err != nil {
		log.WithField("error", err.Error()).Warn("removing superseded content failed")
	}
}

func (s *Store) readWatermark(ctx context.Context) (int64, error) {
	data, err := s.readObject(ctx, s.meta, watermarkKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return 0, nil
		}
		return 0, storageErr("read watermark", err)
	}
	wm, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || wm < 0 {
		return 0, storageErr("parse watermark", fmt.Errorf("invalid value %q", strings.TrimSpace(string(data))))
	}
	return wm, nil
}
