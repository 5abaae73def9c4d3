package interfaces

import (
	"context"

	"github.com/aptakhin/lala-search/internal/models"
)

// Fetcher retrieves a URL subject to the target host's robots.txt.
// Implementations always return a non-nil result; fetch failures and robots
// denials are reported inside it rather than through the error return, so the
// processor can classify them. The error return is reserved for context
// cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*models.CrawlResult, error)
}
