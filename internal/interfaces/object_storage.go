package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/aptakhin/lala-search/internal/models"
)

// ObjectStorage persists raw page bodies in an S3-compatible store.
type ObjectStorage interface {
	// Upload stores the content under a fresh UUID, compressing it when the
	// store is configured to and the body is large enough to bother.
	Upload(ctx context.Context, content []byte) (uuid.UUID, models.CompressionType, error)

	// GetContent fetches a stored object and reverses whatever compression
	// was applied at upload time.
	GetContent(ctx context.Context, id uuid.UUID, compression models.CompressionType) ([]byte, error)
}
