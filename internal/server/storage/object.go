package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored file.
type ObjectInfo struct {
	UpdatedAt   time.Time
	Path        string
	ContentType string
	Size        int64
}

// ObjectStore persists uploaded files.
type ObjectStore interface {
	// Put writes the object at path, replacing an existing one
	Put(ctx context.Context, path, contentType string, body io.Reader) error

	// PublicURL returns a fully qualified URL the object can be fetched from
	// Returns ErrNoPublicURL if the store has no public address configured
	PublicURL(path string) (string, error)

	// Delete removes the object
	// Returns ErrObjectNotFound if it doesn't exist
	Delete(ctx context.Context, path string) error

	// List returns objects whose path starts with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectReader is implemented by stores whose objects are served by this
// application rather than by an external host.
type ObjectReader interface {
	// Open returns the object content
	// Returns ErrObjectNotFound if it doesn't exist
	Open(ctx context.Context, path string) (io.ReadCloser, *ObjectInfo, error)
}
