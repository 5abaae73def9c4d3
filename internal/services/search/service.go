package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// ErrSearchUnavailable is returned when no search backend is configured.
// Handlers map it to 503.
var ErrSearchUnavailable = errors.New("search service is not configured")

const (
	defaultLimit = int64(20)
	maxLimit     = int64(1000)
)

// Service adapts the Meilisearch client to the SearchService contract.
// Documents are flat records keyed by a URL fingerprint (see DocumentID), so
// upserts by id replace earlier crawls of the same page.
type Service struct {
	client    meilisearch.ServiceManager
	indexName string
	logger    arbor.ILogger
}

// NewService creates a Meilisearch-backed search service. Hosts without a
// scheme get http:// prefixed, matching how deployments name the host.
func NewService(host, apiKey, indexName string, logger arbor.ILogger) interfaces.SearchService {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	var opts []meilisearch.Option
	if apiKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(apiKey))
	}

	return &Service{
		client:    meilisearch.New(host, opts...),
		indexName: indexName,
		logger:    logger,
	}
}

// EnsureIndex creates the index if needed and applies attribute settings.
// Settings failures are logged rather than fatal; the index still works with
// Meilisearch defaults.
func (s *Service) EnsureIndex(ctx context.Context) error {
	_, err := s.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        s.indexName,
		PrimaryKey: "id",
	})
	if err != nil {
		// An already-existing index is the normal restart case.
		s.logger.Debug().Err(err).Str("index", s.indexName).Msg("Index create returned error")
	}

	index := s.client.Index(s.indexName)
	if _, err := index.UpdateSearchableAttributes(&[]string{"title", "content", "domain", "url"}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update searchable attributes")
	}
	if _, err := index.UpdateFilterableAttributes(&[]string{"domain", "http_status", "crawled_at", "tenant_id"}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update filterable attributes")
	}
	if _, err := index.UpdateSortableAttributes(&[]string{"crawled_at"}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update sortable attributes")
	}

	s.logger.Info().Str("index", s.indexName).Msg("Search index ensured")
	return nil
}

// IndexDocument adds or replaces one document.
func (s *Service) IndexDocument(ctx context.Context, doc *models.IndexedDocument) error {
	return s.IndexDocuments(ctx, []*models.IndexedDocument{doc})
}

// IndexDocuments adds or replaces documents in one batch. An empty slice is
// a no-op.
func (s *Service) IndexDocuments(ctx context.Context, docs []*models.IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	_, err := s.client.Index(s.indexName).AddDocumentsWithContext(ctx, docs, "id")
	if err != nil {
		return fmt.Errorf("failed to index %d document(s): %w", len(docs), err)
	}

	s.logger.Debug().Int("count", len(docs)).Msg("Documents indexed")
	return nil
}

// Search runs a full-text query with clamped pagination.
func (s *Service) Search(ctx context.Context, request *models.SearchRequest) (*models.SearchResponse, error) {
	limit := defaultLimit
	if request.Limit != nil && *request.Limit > 0 {
		limit = *request.Limit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := int64(0)
	if request.Offset != nil && *request.Offset > 0 {
		offset = *request.Offset
	}

	resp, err := s.client.Index(s.indexName).SearchWithContext(ctx, request.Query, &meilisearch.SearchRequest{
		Limit:            limit,
		Offset:           offset,
		ShowRankingScore: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		result, err := decodeHit(hit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Skipping undecodable search hit")
			continue
		}
		results = append(results, result)
	}

	return &models.SearchResponse{
		Results:      results,
		Total:        resp.EstimatedTotalHits,
		ProcessingMs: resp.ProcessingTimeMs,
	}, nil
}

// DeleteDocument removes one document by id.
func (s *Service) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.client.Index(s.indexName).DeleteDocumentWithContext(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}

// ClearIndex removes every document from the index.
func (s *Service) ClearIndex(ctx context.Context) error {
	_, err := s.client.Index(s.indexName).DeleteAllDocumentsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear index %s: %w", s.indexName, err)
	}

	s.logger.Info().Str("index", s.indexName).Msg("Search index cleared")
	return nil
}

// decodeHit converts a raw Meilisearch hit back to an IndexedDocument,
// pulling the ranking score out of the _rankingScore field when present.
func decodeHit(hit interface{}) (models.SearchResult, error) {
	raw, err := json.Marshal(hit)
	if err != nil {
		return models.SearchResult{}, err
	}

	var doc models.IndexedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.SearchResult{}, err
	}

	result := models.SearchResult{Document: doc}
	var scored struct {
		RankingScore *float64 `json:"_rankingScore"`
	}
	if err := json.Unmarshal(raw, &scored); err == nil {
		result.Score = scored.RankingScore
	}
	return result, nil
}
