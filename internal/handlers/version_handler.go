package handlers

import (
	"net/http"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/models"
)

// VersionHandler serves the agent identity endpoint.
type VersionHandler struct {
	mode models.DeploymentMode
}

func NewVersionHandler(mode models.DeploymentMode) *VersionHandler {
	return &VersionHandler{mode: mode}
}

// VersionHandler handles GET /version requests.
func (h *VersionHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, models.VersionResponse{
		Agent:          "lala-agent",
		Version:        common.GetVersion(),
		DeploymentMode: h.mode.String(),
	})
}
