package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// GetSingleton returns the stored singleton of kind, or nil when it has
// never been written.
func GetSingleton[T, P any](ctx context.Context, g *Gateway, kind Singleton[T, P]) (*T, error) {
	doc, err := g.docs.GetDocument(ctx, kind.Kind, models.SingletonKey)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return nil, nil
		}
		g.logError("failed to get singleton", kind.Kind, err)
		return nil, fmt.Errorf("failed to get %s: %w", kind.Kind, err)
	}

	v, err := decode[T](kind.Kind, doc.Data)
	if err != nil {
		g.logError("failed to decode singleton", kind.Kind, err)
		return nil, err
	}
	return &v, nil
}

// SetSingleton merges patch into the stored singleton, creating it when
// absent, stamps updatedAt and returns the stored result.
func SetSingleton[T, P any](ctx context.Context, g *Gateway, kind Singleton[T, P], patch P) (*T, error) {
	var stored []byte
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		f := make(fields)
		doc, err := tx.GetDocument(ctx, kind.Kind, models.SingletonKey)
		switch {
		case err == nil:
			if f, err = parseFields(doc.Data); err != nil {
				return err
			}
		case !errors.Is(err, storage.ErrDocumentNotFound):
			return err
		}

		if err := f.merge(patch); err != nil {
			return err
		}
		now := g.now()
		f.set("updatedAt", now)

		data, err := g.encode(kind.Kind, f)
		if err != nil {
			return err
		}
		stored = data
		return tx.PutDocument(ctx, &models.Document{
			Collection: kind.Kind,
			ID:         models.SingletonKey,
			Data:       data,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		g.logError("failed to set singleton", kind.Kind, err)
		return nil, fmt.Errorf("failed to update %s: %w", kind.Kind, err)
	}

	v, err := decode[T](kind.Kind, stored)
	if err != nil {
		return nil, err
	}
	g.logger.Info("singleton updated", slog.String("kind", kind.Kind))
	return &v, nil
}
