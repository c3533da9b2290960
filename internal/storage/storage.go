// Package storage contains blob storage abstractions used for the document collections.
// A Storage instance is one flat collection of named objects: the local filesystem,
// an S3-compatible bucket prefix, or process memory.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a flat, keyed object collection.
// Implementations must be safe for concurrent use by multiple goroutines.
type Storage interface {
	// Put writes an object under the given key, replacing any previous object.
	// A reader observes either the previous object or the complete new one, never a partial write.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// It returns ErrObjectNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every object whose key starts with prefix. Order is unspecified.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
