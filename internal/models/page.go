package models

import (
	"time"

	"github.com/google/uuid"
)

// CompressionType identifies how a stored page body was compressed before
// upload. The numeric values are persisted in the storage_compression column.
type CompressionType int

const (
	CompressionNone CompressionType = 0
	CompressionGzip CompressionType = 1
)

// ParseCompressionType maps a stored column value back to a CompressionType.
// Unknown values fall back to CompressionNone so old rows stay readable.
func ParseCompressionType(v int) CompressionType {
	if v == int(CompressionGzip) {
		return CompressionGzip
	}
	return CompressionNone
}

// FileExtension returns the object-key suffix for this compression type.
func (c CompressionType) FileExtension() string {
	if c == CompressionGzip {
		return "html.gz"
	}
	return "html"
}

// ContentType returns the MIME type used when uploading the object.
func (c CompressionType) ContentType() string {
	if c == CompressionGzip {
		return "application/gzip"
	}
	return "text/html"
}

func (c CompressionType) String() string {
	if c == CompressionGzip {
		return "gzip"
	}
	return "none"
}

// CrawledPage records the outcome of fetching one URL, keyed by
// (domain, url_path). crawl_count only ever grows and created_at is fixed at
// the first write; every later crawl preserves both.
type CrawledPage struct {
	Domain              string          `json:"domain"`
	URLPath             string          `json:"url_path"`
	URL                 string          `json:"url"`
	StorageID           *uuid.UUID      `json:"storage_id,omitempty"`
	StorageCompression  CompressionType `json:"storage_compression"`
	LastCrawledAt       time.Time       `json:"last_crawled_at"`
	NextCrawlAt         time.Time       `json:"next_crawl_at"`
	CrawlFrequencyHours int             `json:"crawl_frequency_hours"`
	HTTPStatus          int             `json:"http_status"`
	ContentHash         string          `json:"content_hash"` // lowercase hex MD5 of the body
	ContentLength       int64           `json:"content_length"`
	RobotsAllowed       bool            `json:"robots_allowed"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	CrawlCount          int             `json:"crawl_count"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// DefaultCrawlFrequencyHours is applied to pages without a stored recrawl
// frequency: one recrawl per day.
const DefaultCrawlFrequencyHours = 24
