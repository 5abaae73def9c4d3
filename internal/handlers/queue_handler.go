package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/models"
)

// QueueHandler serves the enqueue endpoint.
type QueueHandler struct {
	resolver *TenantResolver
	logger   arbor.ILogger
}

func NewQueueHandler(resolver *TenantResolver, logger arbor.ILogger) *QueueHandler {
	return &QueueHandler{resolver: resolver, logger: logger}
}

// AddToQueueHandler handles POST /queue/add. The URL must parse, carry a
// host, and the host must be on the tenant's allow list; all checks run
// before any queue mutation.
func (h *QueueHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	var req models.AddToQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid URL: %v", err))
		return
	}
	domain := parsed.Hostname()
	if domain == "" {
		WriteError(w, http.StatusBadRequest, "URL has no host")
		return
	}

	allowed, err := store.DomainStorage().IsAllowed(r.Context(), domain)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Failed to check allowed domains")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to check allowed domains: %v", err))
		return
	}
	if !allowed {
		WriteError(w, http.StatusForbidden, fmt.Sprintf("Domain '%s' is not in the allowed domains list", domain))
		return
	}

	priority := 1
	if req.Priority != nil {
		priority = *req.Priority
	}
	now := time.Now().UTC()
	entry := &models.CrawlQueueEntry{
		Priority:     priority,
		ScheduledAt:  now,
		URL:          req.URL,
		Domain:       domain,
		AttemptCount: 0,
		CreatedAt:    now,
	}
	if err := store.QueueStorage().Insert(r.Context(), entry); err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("Failed to enqueue URL")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add URL to queue: %v", err))
		return
	}

	h.logger.Info().Str("url", req.URL).Str("domain", domain).Msg("URL added to crawl queue")

	WriteJSON(w, http.StatusOK, models.AddToQueueResponse{
		Success: true,
		Message: "URL added to crawl queue",
		URL:     req.URL,
		Domain:  domain,
	})
}
