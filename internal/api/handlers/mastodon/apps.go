// Package mastodon serves the Mastodon-compatible HTTP surface spec.md
// §6 names as core-constrained: app registration, the OAuth token
// lifecycle, and instance metadata. Handler shape (struct-of-deps +
// constructor + Handle method, json-decode request bodies, log failures)
// is the same shape used across this package; responses use
// internal/apierrors's envelope rather than ad hoc http.Error strings,
// since C8 centralizes that mapping.
package mastodon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// AppsHandler serves POST /api/v1/apps.
type AppsHandler struct {
	server *oauth.Server
}

func NewAppsHandler(server *oauth.Server) *AppsHandler {
	return &AppsHandler{server: server}
}

type registerAppRequest struct {
	ClientName   string `json:"client_name"`
	RedirectURIs string `json:"redirect_uris"`
	Scopes       string `json:"scopes"`
	Website      string `json:"website"`
}

type registerAppResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Website      string `json:"website,omitempty"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// HandleRegister implements POST /api/v1/apps. redirect_uris may be sent
// as a single URI or a space-separated list per the Mastodon API; only
// the first is honored since C6 registers exactly one redirect_uri per
// app. Accepts both JSON and form-encoded bodies, matching Mastodon
// clients that post either depending on library.
func (h *AppsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := parseRegisterAppRequest(r)
	if err != nil {
		apierrors.WriteJSON(w, apierrors.ValidationFailed("body", "invalid request body"))
		return
	}

	redirectURI := strings.Fields(req.RedirectURIs)
	var firstRedirect string
	if len(redirectURI) > 0 {
		firstRedirect = redirectURI[0]
	}

	app, err := h.server.RegisterApp(r.Context(), req.ClientName, firstRedirect, req.Scopes, req.Website)
	if err != nil {
		apierrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerAppResponse{
		ID:           app.ClientID,
		Name:         app.ClientName,
		Website:      app.Website,
		RedirectURI:  app.RedirectURI,
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
	})
}

func parseRegisterAppRequest(r *http.Request) (registerAppRequest, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req registerAppRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return registerAppRequest{}, err
	}
	return registerAppRequest{
		ClientName:   r.FormValue("client_name"),
		RedirectURIs: r.FormValue("redirect_uris"),
		Scopes:       r.FormValue("scopes"),
		Website:      r.FormValue("website"),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("[MASTODON-API] failed to encode response", "error", err)
	}
}
