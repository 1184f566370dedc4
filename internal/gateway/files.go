package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/portfolio/internal/server/storage"
)

// UploadResult describes a stored object.
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadFile stores body under path and returns its public URL
func (g *Gateway) UploadFile(ctx context.Context, path, contentType string, body io.Reader) (UploadResult, error) {
	if err := g.objects.Put(ctx, path, contentType, body); err != nil {
		g.logger.ErrorContext(ctx, "failed to upload file", slog.String("path", path), slog.Any("error", err))
		return UploadResult{}, fmt.Errorf("failed to upload %s: %w", path, err)
	}

	url, err := g.objects.PublicURL(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to resolve url for %s: %w", path, err)
	}
	if url == "" {
		return UploadResult{}, fmt.Errorf("failed to resolve url for %s: %w", path, storage.ErrNoPublicURL)
	}

	g.logger.InfoContext(ctx, "file uploaded", slog.String("path", path), slog.String("content_type", contentType))
	return UploadResult{URL: url, Path: path}, nil
}

// DeleteFile removes the object at path
func (g *Gateway) DeleteFile(ctx context.Context, path string) error {
	if err := g.objects.Delete(ctx, path); err != nil {
		g.logger.ErrorContext(ctx, "failed to delete file", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	g.logger.InfoContext(ctx, "file deleted", slog.String("path", path))
	return nil
}
