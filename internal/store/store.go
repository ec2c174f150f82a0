// Package store abstracts the durable object store holding raw exports
// and named snapshots. The production implementation is S3; an in-memory
// implementation backs tests and local runs.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no object exists at the key.
	ErrNotFound = errors.New("store: object not found")

	// ErrUnavailable wraps infrastructure failures. A run that hits it
	// is failed and safe to retry from scratch.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the object-store collaborator interface. All calls honor the
// caller's context deadline; the store offers no atomic rename, so moves
// are built from Copy followed by Delete.
type Store interface {
	// Get returns the object body at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes body at key with the given content type and tags,
	// replacing any existing object.
	Put(ctx context.Context, key string, body []byte, contentType string, tags map[string]string) error

	// Copy duplicates the object at src to dst, preserving content.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error

	// Tags returns the tag set of the object at key.
	Tags(ctx context.Context, key string) (map[string]string, error)
}
