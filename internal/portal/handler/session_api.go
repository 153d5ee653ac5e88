package handler

import (
	"net/http"

	"unibuild/internal/session/models"
	"unibuild/pkg/platform/httputil"
)

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	User          *models.User `json:"user"`
	DashboardPath *string      `json:"dashboard_path"`
}

// handleSession reports the session to scripts on the page. The user is only
// ever the one stored for this device.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Load(r.Context(), h.storeFor(w, r))
	resp := sessionResponse{Loading: state.Kind == models.StateLoading}
	if state.IsAuthenticated() {
		dashboard := state.User.Dashboard()
		resp.Authenticated = true
		resp.User = state.User
		resp.DashboardPath = &dashboard
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, resp)
}
