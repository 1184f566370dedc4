package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/iudanet/portfolio/internal/server/storage"
)

// Config configures the Google Cloud Storage object store.
type Config struct {
	Bucket string
	// PublicBaseURL overrides the default https://storage.googleapis.com/<bucket>
	// address, e.g. a CDN domain
	PublicBaseURL   string
	CredentialsFile string
	// EmulatorHost points the client at a fake-gcs-server instance
	EmulatorHost string
}

// Storage stores uploaded files in a GCS bucket. The bucket must allow
// public reads for the returned URLs to be fetchable.
type Storage struct {
	client        *gstorage.Client
	bucket        string
	publicBaseURL string
}

// New creates a GCS client for cfg.Bucket
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.EmulatorHost != "":
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.EmulatorHost, "/")+"/storage/v1/"), option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(gstorage.ScopeReadWrite))
	default:
		opts = append(opts, option.WithScopes(gstorage.ScopeReadWrite))
	}

	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &Storage{client: client, bucket: cfg.Bucket, publicBaseURL: base}, nil
}

// Close closes the client
func (s *Storage) Close() error {
	return s.client.Close()
}

// Put uploads the object
func (s *Storage) Put(ctx context.Context, path, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// PublicURL returns the object's public address
func (s *Storage) PublicURL(path string) (string, error) {
	if s.publicBaseURL == "" {
		return "", storage.ErrNoPublicURL
	}
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBaseURL + "/" + strings.Join(parts, "/"), nil
}

// Delete removes the object
func (s *Storage) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.client.Bucket(s.bucket).Object(path).Delete(ctx); err != nil {
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return storage.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q: %w", path, err)
	}
	return nil
}

// List returns objects under prefix
func (s *Storage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := s.client.Bucket(s.bucket).Objects(ctx, &gstorage.Query{Prefix: prefix})
	out := make([]storage.ObjectInfo, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCS objects: %w", err)
		}
		out = append(out, storage.ObjectInfo{
			Path:        attrs.Name,
			ContentType: attrs.ContentType,
			Size:        attrs.Size,
			UpdatedAt:   attrs.Updated,
		})
	}
	return out, nil
}

var _ storage.ObjectStore = (*Storage)(nil)
