package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
	"github.com/aptakhin/lala-search/internal/services/auth"
)

// SessionCookieName carries the opaque session token in multi-tenant mode.
const SessionCookieName = "lala_session"

// TenantResolver maps a request to the storage manager for its tenant.
// Single-tenant deployments always resolve to the base store; multi-tenant
// deployments authenticate the session cookie and scope storage to the
// session's tenant keyspace.
type TenantResolver struct {
	store    interfaces.StorageManager
	sessions interfaces.SessionService // nil when authentication is not wired up
	mode     models.DeploymentMode
	logger   arbor.ILogger
}

func NewTenantResolver(
	store interfaces.StorageManager,
	sessions interfaces.SessionService,
	mode models.DeploymentMode,
	logger arbor.ILogger,
) *TenantResolver {
	return &TenantResolver{
		store:    store,
		sessions: sessions,
		mode:     mode,
		logger:   logger,
	}
}

// Resolve returns the tenant-scoped storage manager for a request, writing
// the error response itself when resolution fails. Callers must return
// immediately on a nil result.
func (tr *TenantResolver) Resolve(w http.ResponseWriter, r *http.Request) interfaces.StorageManager {
	if !tr.mode.IsMultiTenant() {
		return tr.store
	}

	if tr.sessions == nil {
		WriteError(w, http.StatusServiceUnavailable, "Authentication is not configured")
		return nil
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteError(w, http.StatusUnauthorized, "Missing session cookie")
		return nil
	}

	user, err := tr.sessions.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			WriteError(w, http.StatusUnauthorized, "Invalid or expired session")
			return nil
		}
		tr.logger.Error().Err(err).Msg("Session validation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to validate session")
		return nil
	}

	return tr.store.WithKeyspace(user.TenantID)
}
