package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// documents implements storage.DocumentTx on top of a querier
type documents struct {
	q querier
}

// RunInTx runs fn inside a database transaction
func (s *Storage) RunInTx(ctx context.Context, fn func(tx storage.DocumentTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(documents{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a single document
func (d documents) GetDocument(ctx context.Context, collection, id string) (*models.Document, error) {
	query := `
		SELECT collection, id, data, sort_order, updated_at
		FROM documents
		WHERE collection = ? AND id = ?
	`

	doc, err := scanDocument(d.q.QueryRowContext(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListDocuments retrieves all documents of a collection ordered by sort_order
func (d documents) ListDocuments(ctx context.Context, collection string) ([]*models.Document, error) {
	query := `
		SELECT collection, id, data, sort_order, updated_at
		FROM documents
		WHERE collection = ?
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := d.q.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}

// CountDocuments returns the number of documents in a collection
func (d documents) CountDocuments(ctx context.Context, collection string) (int, error) {
	var n int
	err := d.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// PutDocument inserts or replaces a document
func (d documents) PutDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (collection, id, data, sort_order, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at
	`

	_, err := d.q.ExecContext(ctx, query,
		doc.Collection,
		doc.ID,
		string(doc.Data),
		doc.Order,
		doc.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}

	return nil
}

// DeleteDocument removes a document
func (d documents) DeleteDocument(ctx context.Context, collection, id string) error {
	result, err := d.q.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc       models.Document
		data      string
		updatedAt int64
	)
	if err := row.Scan(&doc.Collection, &doc.ID, &data, &doc.Order, &updatedAt); err != nil {
		return nil, err
	}
	doc.Data = []byte(data)
	doc.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &doc, nil
}

var (
	_ storage.DocumentStore = (*Storage)(nil)
	_ storage.UserStorage   = (*Storage)(nil)
	_ storage.TokenStorage  = (*Storage)(nil)
)
