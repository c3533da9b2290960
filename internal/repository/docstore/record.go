package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docrepo/internal/model"
)

// naiveISOLayout matches ISO-8601 timestamps without a zone, as written by
// earlier deployments of the repository. They are read as UTC.
const naiveISOLayout = "2006-01-02T15:04:05.999999999"

var errMalformedRecord = errors.New("malformed metadata record")

// metadataRecord is the persisted form of model.DocumentMetadata.
// Unknown fields (older records embed the content) are ignored on read.
type metadataRecord struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Tags         []string `json:"tags"`
	UploadedDate string   `json:"uploaded_date"`
	Version      int      `json:"version"`
}

func encodeMetadata(m model.DocumentMetadata) ([]byte, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(metadataRecord{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		Tags:         tags,
		UploadedDate: m.UploadedDate.UTC().Format(time.RFC3339Nano),
		Version:      m.Version,
	})
}

func decodeMetadata(data []byte) (model.DocumentMetadata, error) {
	var rec metadataRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.DocumentMetadata{}, fmt.Errorf("%w: %w", errMalformedRecord, err)
	}
	if rec.ID <= 0 {
		return model.DocumentMetadata{}, fmt.Errorf("%w: invalid id %d", errMalformedRecord, rec.ID)
	}
	if rec.Version < 1 {
		return model.DocumentMetadata{}, fmt.Errorf("%w: invalid version %d", errMalformedRecord, rec.Version)
	}
	uploaded, err := parseTimestamp(rec.UploadedDate)
	if err != nil {
		return model.DocumentMetadata{}, fmt.Errorf("%w: uploaded_date: %w", errMalformedRecord, err)
	}
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.DocumentMetadata{
		ID:           rec.ID,
		Title:        rec.Title,
		Author:       rec.Author,
		Tags:         tags,
		UploadedDate: uploaded,
		Version:      rec.Version,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(naiveISOLayout, s, time.UTC)
}
