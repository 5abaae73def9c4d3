package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/models"
)

// AdminHandler serves the allow-list and settings endpoints.
type AdminHandler struct {
	resolver *TenantResolver
	logger   arbor.ILogger
}

func NewAdminHandler(resolver *TenantResolver, logger arbor.ILogger) *AdminHandler {
	return &AdminHandler{resolver: resolver, logger: logger}
}

// AllowedDomainsHandler handles POST and GET /admin/allowed-domains.
func (h *AdminHandler) AllowedDomainsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.addDomain(w, r)
	case http.MethodGet:
		h.listDomains(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) addDomain(w http.ResponseWriter, r *http.Request) {
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	var req models.AddDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		WriteError(w, http.StatusBadRequest, "Domain must not be empty")
		return
	}

	if err := store.DomainStorage().Add(r.Context(), domain, "api", req.Notes); err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Failed to add allowed domain")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add domain: %v", err))
		return
	}

	h.logger.Info().Str("domain", domain).Msg("Domain added to allow list")

	WriteJSON(w, http.StatusOK, models.AddDomainResponse{
		Success: true,
		Message: "Domain added to allowed list",
		Domain:  domain,
	})
}

func (h *AdminHandler) listDomains(w http.ResponseWriter, r *http.Request) {
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	domains, err := store.DomainStorage().List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list allowed domains")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list domains: %v", err))
		return
	}
	if domains == nil {
		domains = []models.AllowedDomain{}
	}

	WriteJSON(w, http.StatusOK, models.ListDomainsResponse{
		Domains: domains,
		Count:   len(domains),
	})
}

// DeleteDomainHandler handles DELETE /admin/allowed-domains/{domain}.
// Removal is idempotent: deleting an unlisted domain succeeds.
func (h *AdminHandler) DeleteDomainHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	domain := strings.TrimPrefix(r.URL.Path, "/admin/allowed-domains/")
	if domain == "" || strings.Contains(domain, "/") {
		WriteError(w, http.StatusBadRequest, "Domain must not be empty")
		return
	}

	if err := store.DomainStorage().Remove(r.Context(), domain); err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Failed to remove allowed domain")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to remove domain: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, models.DeleteDomainResponse{
		Success: true,
		Message: "Domain removed from allowed list",
		Domain:  domain,
	})
}

// CrawlingEnabledHandler handles GET and PUT /admin/settings/crawling-enabled.
func (h *AdminHandler) CrawlingEnabledHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getCrawlingEnabled(w, r)
	case http.MethodPut:
		h.setCrawlingEnabled(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) getCrawlingEnabled(w http.ResponseWriter, r *http.Request) {
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	enabled, err := store.SettingsStorage().IsCrawlingEnabled(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read crawling setting")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read setting: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, models.CrawlingEnabledResponse{Enabled: enabled})
}

func (h *AdminHandler) setCrawlingEnabled(w http.ResponseWriter, r *http.Request) {
	store := h.resolver.Resolve(w, r)
	if store == nil {
		return
	}

	var req models.SetCrawlingEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.SettingsStorage().SetCrawlingEnabled(r.Context(), req.Enabled); err != nil {
		h.logger.Error().Err(err).Msg("Failed to update crawling setting")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update setting: %v", err))
		return
	}

	h.logger.Info().Bool("enabled", req.Enabled).Msg("Crawling setting updated")

	WriteJSON(w, http.StatusOK, models.CrawlingEnabledResponse{Enabled: req.Enabled})
}
