package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type documents struct {
	q querier
}

// RunInTx runs fn inside a serializable transaction
func (s *Storage) RunInTx(ctx context.Context, fn func(tx storage.DocumentTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(documents{q: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a single document
func (d documents) GetDocument(ctx context.Context, collection, id string) (*models.Document, error) {
	query := `
		SELECT collection, id, data::text, sort_order, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	doc, err := scanDocument(d.q.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListDocuments retrieves all documents of a collection ordered by sort_order
func (d documents) ListDocuments(ctx context.Context, collection string) ([]*models.Document, error) {
	query := `
		SELECT collection, id, data::text, sort_order, updated_at
		FROM documents
		WHERE collection = $1
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := d.q.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

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
	if err := d.q.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE collection = $1`, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// PutDocument inserts or replaces a document
func (d documents) PutDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (collection, id, data, sort_order, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := d.q.Exec(ctx, query, doc.Collection, doc.ID, string(doc.Data), doc.Order, doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document
func (d documents) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		doc  models.Document
		data string
	)
	if err := row.Scan(&doc.Collection, &doc.ID, &data, &doc.Order, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Data = []byte(data)
	return &doc, nil
}

var (
	_ storage.DocumentStore = (*Storage)(nil)
	_ storage.UserStorage   = (*Storage)(nil)
	_ storage.TokenStorage  = (*Storage)(nil)
)
