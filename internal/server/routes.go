package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Agent identity
	mux.HandleFunc("/version", s.app.VersionHandler.VersionHandler)

	// Crawl queue
	mux.HandleFunc("/queue/add", s.app.QueueHandler.AddToQueueHandler) // POST

	// Full-text search
	mux.HandleFunc("/search", s.app.SearchHandler.SearchHandler) // POST

	// Admin - domain allow list
	mux.HandleFunc("/admin/allowed-domains", s.app.AdminHandler.AllowedDomainsHandler) // GET (list), POST (add)
	mux.HandleFunc("/admin/allowed-domains/", s.app.AdminHandler.DeleteDomainHandler)  // DELETE /{domain}

	// Admin - settings
	mux.HandleFunc("/admin/settings/crawling-enabled", s.app.AdminHandler.CrawlingEnabledHandler) // GET, PUT

	return mux
}
