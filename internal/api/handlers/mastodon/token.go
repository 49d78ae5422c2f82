package mastodon

import (
	"net/http"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// TokenHandler serves POST /oauth/token.
type TokenHandler struct {
	server *oauth.Server
}

func NewTokenHandler(server *oauth.Server) *TokenHandler {
	return &TokenHandler{server: server}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
	ExpiresIn   int64  `json:"expires_in"`
}

// HandleToken implements POST /oauth/token for grant_type ∈
// {authorization_code, password} (spec.md §4.6). Unknown grant types
// map to validation_failed.
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteJSON(w, apierrors.ValidationFailed("body", "invalid form body"))
		return
	}

	clientID := r.FormValue("client_id")
	clientSecret := r.FormValue("client_secret")

	var (
		tok oauth.TokenRecord
		err error
	)

	switch r.FormValue("grant_type") {
	case "authorization_code":
		tok, err = h.server.ExchangeCode(r.Context(), clientID, clientSecret, r.FormValue("code"), r.FormValue("redirect_uri"))
	case "password":
		tok, err = h.server.PasswordGrant(r.Context(), clientID, clientSecret, r.FormValue("username"), r.FormValue("password"), r.FormValue("scope"))
	default:
		err = apierrors.ValidationFailed("grant_type", "must be authorization_code or password")
	}
	if err != nil {
		apierrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		Scope:       joinScopes(tok.Scopes),
		CreatedAt:   tok.CreatedAt.Unix(),
		ExpiresIn:   tok.ExpiresIn,
	})
}

func joinScopes(scopes []string) string {
	out := ""
	for i, s := range scopes {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
