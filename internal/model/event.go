package model

import "time"

// EventAction names the kind of mutation recorded in the journal.
type EventAction string

const (
	EventCreated EventAction = "created"
	EventUpdated EventAction = "updated"
	EventDeleted EventAction = "deleted"
)

// DocumentEvent is one entry of a document's change history.
type DocumentEvent struct {
	ID         string      `json:"id"`
	DocumentID int64       `json:"document_id"`
	Action     EventAction `json:"action"`
	Title      string      `json:"title"`
	Version    int         `json:"version"`
	OccurredAt time.Time   `json:"occurred_at"`
}
