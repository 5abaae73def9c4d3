package interfaces

import (
	"context"

	"github.com/aptakhin/lala-search/internal/models"
)

// SearchService abstracts the full-text index for crawled documents.
// This interface lets the search backend be swapped without affecting
// the queue processor or the HTTP handlers.
type SearchService interface {
	// EnsureIndex creates the index if needed and applies the searchable,
	// filterable and sortable attribute settings.
	EnsureIndex(ctx context.Context) error

	// IndexDocument adds or replaces a single document keyed by its ID.
	IndexDocument(ctx context.Context, doc *models.IndexedDocument) error

	// IndexDocuments adds or replaces documents in one batch.
	// An empty slice is a no-op.
	IndexDocuments(ctx context.Context, docs []*models.IndexedDocument) error

	// Search runs a full-text query. Limit defaults to 20 and is capped at
	// 1000, offset defaults to 0.
	Search(ctx context.Context, request *models.SearchRequest) (*models.SearchResponse, error)

	// DeleteDocument removes one document by ID.
	DeleteDocument(ctx context.Context, docID string) error

	// ClearIndex removes every document from the index.
	ClearIndex(ctx context.Context) error
}
