package models

// IndexedDocument is the flat record upserted into the search index. ID is a
// hex MD5 of tenant_id+url in multi-tenant mode (url alone otherwise) so ids
// never collide across tenants.
type IndexedDocument struct {
	ID         string  `json:"id"`
	TenantID   *string `json:"tenant_id,omitempty"`
	URL        string  `json:"url"`
	Domain     string  `json:"domain"`
	Title      *string `json:"title,omitempty"`
	Content    string  `json:"content"`
	Excerpt    string  `json:"excerpt"`
	CrawledAt  int64   `json:"crawled_at"` // seconds since epoch
	HTTPStatus int     `json:"http_status"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query  string `json:"query"`
	Limit  *int64 `json:"limit,omitempty"`  // default 20, max 1000
	Offset *int64 `json:"offset,omitempty"` // default 0
}

// SearchResult is one hit with its optional ranking score.
type SearchResult struct {
	Document IndexedDocument `json:"document"`
	Score    *float64        `json:"score,omitempty"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Total        int64          `json:"total"`
	ProcessingMs int64          `json:"processing_ms"`
}
