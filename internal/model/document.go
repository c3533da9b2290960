package model

import "time"

// Document is a stored text document together with its metadata.
// This is a pure domain model with no persistence-specific dependencies.
// It can be used across layers (HTTP, service, store) without coupling to storage layout.
type Document struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	UploadedDate time.Time `json:"uploaded_date"`
	Version      int       `json:"version"`
}

// DocumentMetadata is a Document without its content body.
// Listing and search return it so full bodies are never transferred.
type DocumentMetadata struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Tags         []string  `json:"tags"`
	UploadedDate time.Time `json:"uploaded_date"`
	Version      int       `json:"version"`
}

// Metadata returns the metadata projection of d.
func (d *Document) Metadata() DocumentMetadata {
	return DocumentMetadata{
		ID:           d.ID,
		Title:        d.Title,
		Author:       d.Author,
		Tags:         append([]string(nil), d.Tags...),
		UploadedDate: d.UploadedDate,
		Version:      d.Version,
	}
}

// DocumentUpdate holds the fields of a partial update.
// A nil field keeps its prior value; an empty non-nil Tags slice clears the tags.
type DocumentUpdate struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}
