package storage

import (
	"context"

	"github.com/iudanet/portfolio/internal/models"
)

// DocumentTx is the set of document operations available inside and outside
// a transaction.
type DocumentTx interface {
	// GetDocument returns a single document
	// Returns ErrDocumentNotFound if it doesn't exist
	GetDocument(ctx context.Context, collection, id string) (*models.Document, error)

	// ListDocuments returns every document of a collection ordered by Order, then ID
	// Returns empty slice if the collection is empty or unknown
	ListDocuments(ctx context.Context, collection string) ([]*models.Document, error)

	// CountDocuments returns the number of documents in a collection
	CountDocuments(ctx context.Context, collection string) (int, error)

	// PutDocument inserts or replaces a document by (collection, id)
	PutDocument(ctx context.Context, doc *models.Document) error

	// DeleteDocument removes a document
	// Returns ErrDocumentNotFound if it doesn't exist
	DeleteDocument(ctx context.Context, collection, id string) error
}

// DocumentStore persists content documents.
type DocumentStore interface {
	DocumentTx

	// RunInTx runs fn in a single transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(tx DocumentTx) error) error
}
