package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// ListCollection returns all rows of kind ordered by their order field.
// An empty collection yields an empty, non-nil slice.
func ListCollection[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P]) ([]T, error) {
	docs, err := g.docs.ListDocuments(ctx, kind.Kind)
	if err != nil {
		g.logError("failed to list collection", kind.Kind, err)
		return nil, fmt.Errorf("failed to list %s: %w", kind.Kind, err)
	}
	return decodeAll[T](kind.Kind, docs)
}

func decodeAll[T any](kind string, docs []*models.Document) ([]T, error) {
	rows := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](kind, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", doc.ID, err)
		}
		rows = append(rows, v)
	}
	return rows, nil
}

// AddRow creates a row from patch. The row is appended at the end of the
// collection, gets a generated id unless the patch carries one, and is
// published unless the patch says otherwise.
func AddRow[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P], patch P) (T, error) {
	var (
		zero   T
		stored []byte
	)
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		f := make(fields)
		if err := f.merge(patch); err != nil {
			return err
		}

		id := f.str("id")
		if id == "" {
			id = newRowID(kind.Kind)
		} else if _, err := tx.GetDocument(ctx, kind.Kind, id); err == nil {
			return ErrDuplicateID
		} else if !errors.Is(err, storage.ErrDocumentNotFound) {
			return err
		}

		order, err := tx.CountDocuments(ctx, kind.Kind)
		if err != nil {
			return err
		}

		now := g.now()
		f.set("id", id)
		f.set("order", order)
		f.set("createdAt", now)
		f.set("updatedAt", now)

		data, err := g.encode(kind.Kind, f)
		if err != nil {
			return err
		}
		stored = data
		return tx.PutDocument(ctx, &models.Document{
			Collection: kind.Kind,
			ID:         id,
			Data:       data,
			Order:      order,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		g.logError("failed to add row", kind.Kind, err)
		return zero, fmt.Errorf("failed to add %s row: %w", kind.Kind, err)
	}

	v, err := decode[T](kind.Kind, stored)
	if err != nil {
		return zero, err
	}
	g.logger.Info("row added", slog.String("kind", kind.Kind))
	return v, nil
}

// UpdateRow merges patch into the row with id. The id and order of the row
// cannot be changed through a patch.
func UpdateRow[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P], id string, patch P) (T, error) {
	var (
		zero   T
		stored []byte
	)
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		doc, err := tx.GetDocument(ctx, kind.Kind, id)
		if err != nil {
			return err
		}
		f, err := parseFields(doc.Data)
		if err != nil {
			return err
		}
		if err := f.merge(patch); err != nil {
			return err
		}

		now := g.now()
		f.set("id", id)
		f.set("order", doc.Order)
		f.set("updatedAt", now)

		data, err := g.encode(kind.Kind, f)
		if err != nil {
			return err
		}
		stored = data
		return tx.PutDocument(ctx, &models.Document{
			Collection: kind.Kind,
			ID:         id,
			Data:       data,
			Order:      doc.Order,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		g.logError("failed to update row", kind.Kind, err)
		return zero, fmt.Errorf("failed to update %s row %s: %w", kind.Kind, id, err)
	}

	return decode[T](kind.Kind, stored)
}

// DeleteRow removes the row with id and closes the gap it leaves so the
// remaining rows keep a dense 0-based order.
func DeleteRow[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P], id string) error {
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		if err := tx.DeleteDocument(ctx, kind.Kind, id); err != nil {
			return err
		}
		docs, err := tx.ListDocuments(ctx, kind.Kind)
		if err != nil {
			return err
		}
		return renumber(ctx, tx, docs, false, g.now())
	})
	if err != nil {
		g.logError("failed to delete row", kind.Kind, err)
		return fmt.Errorf("failed to delete %s row %s: %w", kind.Kind, id, err)
	}
	g.logger.Info("row deleted", slog.String("kind", kind.Kind), slog.String("id", id))
	return nil
}

// ReorderRows assigns order = index to each row named in ids and returns the
// collection in its new order. ids must be a permutation of the
// collection's row ids; the whole reorder commits or nothing does.
func ReorderRows[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P], ids []string) ([]T, error) {
	var docs []*models.Document
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		count, err := tx.CountDocuments(ctx, kind.Kind)
		if err != nil {
			return err
		}
		if len(ids) != count {
			return ErrInvalidOrder
		}

		ordered := make([]*models.Document, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return ErrInvalidOrder
			}
			seen[id] = true

			doc, err := tx.GetDocument(ctx, kind.Kind, id)
			if err != nil {
				return err
			}
			ordered = append(ordered, doc)
		}

		if err := renumber(ctx, tx, ordered, true, g.now()); err != nil {
			return err
		}
		docs = ordered
		return nil
	})
	if err != nil {
		g.logError("failed to reorder rows", kind.Kind, err)
		return nil, fmt.Errorf("failed to reorder %s: %w", kind.Kind, err)
	}

	g.logger.Info("rows reordered", slog.String("kind", kind.Kind), slog.Int("count", len(docs)))
	return decodeAll[T](kind.Kind, docs)
}

// renumber rewrites order = index for every document whose order differs.
// Rows already in place are left untouched.
func renumber(ctx context.Context, tx storage.DocumentTx, docs []*models.Document, touch bool, now time.Time) error {
	for i, doc := range docs {
		if doc.Order == i {
			continue
		}
		f, err := parseFields(doc.Data)
		if err != nil {
			return err
		}
		f.set("order", i)
		if touch {
			f.set("updatedAt", now)
			doc.UpdatedAt = now
		}
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		doc.Data = data
		doc.Order = i
		if err := tx.PutDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func newRowID(kind string) string {
	return kind + "_" + uuid.NewString()
}
