// Package repository contains data access layer abstractions.
// Implementations live in subpackages: docstore (documents over object storage)
// and sqldb (event journal over database/sql).
package repository

import "errors"

var (
	// ErrNotFound is returned when the requested document has no live record.
	ErrNotFound = errors.New("document not found")
	// ErrStorage wraps failures of the underlying storage backend. Callers receive it
	// for read, write, rename and remove errors and for unreadable persisted records.
	ErrStorage = errors.New("storage failure")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
