package mastodon

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

//go:embed templates/login.html
var loginTemplateFS embed.FS

const (
	loginSessionName   = "archaeopteryx_login"
	loginSessionCSRF   = "csrf_token"
	loginQueryClientID = "client_id"
	loginQueryRedirect = "redirect_uri"
	loginQueryState    = "state"
)

// AuthorizeHandler serves GET/POST /oauth/authorize (spec.md §4.6): GET
// renders a login form carrying a CSRF token in a gorilla/sessions
// cookie store; POST validates that token, creates an
// AuthorizationCode, and redirects to redirect_uri?code=....
type AuthorizeHandler struct {
	server   *oauth.Server
	template *template.Template
}

func NewAuthorizeHandler(server *oauth.Server) (*AuthorizeHandler, error) {
	tmpl, err := template.ParseFS(loginTemplateFS, "templates/login.html")
	if err != nil {
		return nil, fmt.Errorf("mastodon: parse login template: %w", err)
	}
	return &AuthorizeHandler{server: server, template: tmpl}, nil
}

type loginFormData struct {
	Error       string
	CSRFToken   string
	ClientID    string
	RedirectURI string
	State       string
}

// HandleAuthorize dispatches on method: GET renders the login form, POST
// processes the submitted credentials.
func (h *AuthorizeHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.handleSubmit(w, r)
		return
	}
	h.handleForm(w, r)
}

func (h *AuthorizeHandler) handleForm(w http.ResponseWriter, r *http.Request) {
	session, err := oauth.GetCookieStore().Get(r, loginSessionName)
	if err != nil {
		slog.Warn("[MASTODON-API] login session decode failed, issuing fresh session", "error", err)
	}

	csrfToken, err := randomCSRFToken()
	if err != nil {
		apierrors.WriteJSON(w, apierrors.Internal(err))
		return
	}
	session.Values[loginSessionCSRF] = csrfToken
	if err := session.Save(r, w); err != nil {
		apierrors.WriteJSON(w, apierrors.Internal(err))
		return
	}

	data := loginFormData{
		CSRFToken:   csrfToken,
		ClientID:    r.URL.Query().Get(loginQueryClientID),
		RedirectURI: r.URL.Query().Get(loginQueryRedirect),
		State:       r.URL.Query().Get(loginQueryState),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		slog.Error("[MASTODON-API] failed to render login form", "error", err)
	}
}

func (h *AuthorizeHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteJSON(w, apierrors.ValidationFailed("body", "invalid form body"))
		return
	}

	session, err := oauth.GetCookieStore().Get(r, loginSessionName)
	if err != nil || session.Values[loginSessionCSRF] != r.FormValue("csrf_token") {
		apierrors.WriteJSON(w, apierrors.Forbidden("invalid or expired CSRF token"))
		return
	}
	delete(session.Values, loginSessionCSRF)
	_ = session.Save(r, w)

	clientID := r.FormValue(loginQueryClientID)
	redirectURI := r.FormValue(loginQueryRedirect)

	code, err := h.server.Authorize(r.Context(), clientID, redirectURI, r.FormValue("identifier"), r.FormValue("password"))
	if err != nil {
		h.renderError(w, r, clientID, redirectURI, r.FormValue("state"), err)
		return
	}

	dest, err := url.Parse(redirectURI)
	if err != nil {
		apierrors.WriteJSON(w, apierrors.ValidationFailed("redirect_uri", "malformed"))
		return
	}
	q := dest.Query()
	q.Set("code", code)
	if state := r.FormValue("state"); state != "" {
		q.Set("state", state)
	}
	dest.RawQuery = q.Encode()

	http.Redirect(w, r, dest.String(), http.StatusFound)
}

func (h *AuthorizeHandler) renderError(w http.ResponseWriter, r *http.Request, clientID, redirectURI, state string, err error) {
	csrfToken, tokenErr := randomCSRFToken()
	if tokenErr != nil {
		apierrors.WriteJSON(w, apierrors.Internal(tokenErr))
		return
	}

	session, sessErr := oauth.GetCookieStore().Get(r, loginSessionName)
	if sessErr != nil {
		slog.Warn("[MASTODON-API] login session decode failed, issuing fresh session", "error", sessErr)
	}
	session.Values[loginSessionCSRF] = csrfToken
	if err := session.Save(r, w); err != nil {
		apierrors.WriteJSON(w, apierrors.Internal(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = h.template.Execute(w, loginFormData{
		Error:       apierrors.As(err).Msg,
		CSRFToken:   csrfToken,
		ClientID:    clientID,
		RedirectURI: redirectURI,
		State:       state,
	})
}
