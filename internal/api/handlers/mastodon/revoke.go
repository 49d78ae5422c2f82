package mastodon

import (
	"log/slog"
	"net/http"

	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// RevokeHandler serves POST /oauth/revoke.
type RevokeHandler struct {
	server *oauth.Server
}

func NewRevokeHandler(server *oauth.Server) *RevokeHandler {
	return &RevokeHandler{server: server}
}

// HandleRevoke implements POST /oauth/revoke. Always returns 200, even
// for an unknown or already-revoked token (spec.md §6 — revoke has no
// visible failure mode).
func (h *RevokeHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.server.Revoke(r.Context(), r.FormValue("token")); err != nil {
		slog.Warn("[MASTODON-API] revoke failed, responding 200 regardless", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
