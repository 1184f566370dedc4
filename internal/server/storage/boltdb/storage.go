package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/portfolio/internal/server/storage"
)

var (
	// BoltDB bucket names
	bucketObjects = []byte("objects")
	bucketMeta    = []byte("objects_meta")
)

// FilesPrefix is the URL path under which objects are served
const FilesPrefix = "/files/"

// Storage keeps uploaded files in a BoltDB file. Objects are served by the
// application itself, so public URLs are built from baseURL.
type Storage struct {
	db      *bbolt.DB
	baseURL string
}

// New creates a new BoltDB object store
// baseURL is the externally visible server address, e.g. https://example.com
func New(ctx context.Context, dbPath, baseURL string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db, baseURL: strings.TrimRight(baseURL, "/")}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets creates the buckets if they don't exist
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketObjects, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Put stores the object, replacing an existing one
func (s *Storage) Put(ctx context.Context, path, contentType string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	meta, err := json.Marshal(storage.ObjectInfo{
		Path:        path,
		ContentType: contentType,
		Size:        int64(len(data)),
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal object info: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketObjects).Put([]byte(path), data); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
		if err := tx.Bucket(bucketMeta).Put([]byte(path), meta); err != nil {
			return fmt.Errorf("failed to save object info: %w", err)
		}
		return nil
	})
}

// PublicURL returns the address the object is served from
func (s *Storage) PublicURL(path string) (string, error) {
	if s.baseURL == "" {
		return "", storage.ErrNoPublicURL
	}
	return s.baseURL + FilesPrefix + escapePath(path), nil
}

// Delete removes the object
func (s *Storage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		objects := tx.Bucket(bucketObjects)
		if objects.Get([]byte(path)) == nil {
			return storage.ErrObjectNotFound
		}
		if err := objects.Delete([]byte(path)); err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		if err := tx.Bucket(bucketMeta).Delete([]byte(path)); err != nil {
			return fmt.Errorf("failed to delete object info: %w", err)
		}
		return nil
	})
}

// List returns info for objects whose path starts with prefix
func (s *Storage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	infos := make([]storage.ObjectInfo, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketMeta).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			var info storage.ObjectInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("failed to unmarshal object info: %w", err)
			}
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return infos, nil
}

// Open returns a copy of the object content
func (s *Storage) Open(ctx context.Context, path string) (io.ReadCloser, *storage.ObjectInfo, error) {
	var (
		data []byte
		info storage.ObjectInfo
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketObjects).Get([]byte(path))
		if v == nil {
			return storage.ErrObjectNotFound
		}
		// bbolt values are only valid inside the transaction
		data = bytes.Clone(v)

		if m := tx.Bucket(bucketMeta).Get([]byte(path)); m != nil {
			if err := json.Unmarshal(m, &info); err != nil {
				return fmt.Errorf("failed to unmarshal object info: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return io.NopCloser(bytes.NewReader(data)), &info, nil
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var (
	_ storage.ObjectStore  = (*Storage)(nil)
	_ storage.ObjectReader = (*Storage)(nil)
)
