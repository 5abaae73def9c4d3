package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// SearchHandler proxies full-text queries to the search backend.
type SearchHandler struct {
	searchService interfaces.SearchService // nil when no backend is configured
	resolver      *TenantResolver
	logger        arbor.ILogger
}

func NewSearchHandler(searchService interfaces.SearchService, resolver *TenantResolver, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		resolver:      resolver,
		logger:        logger,
	}
}

// SearchHandler handles POST /search requests. Limit and offset defaults and
// clamping live in the search service.
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if store := h.resolver.Resolve(w, r); store == nil {
		return
	}

	if h.searchService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Search service is not configured")
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.searchService.Search(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Str("query", req.Query).Msg("Search failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, response)
}
