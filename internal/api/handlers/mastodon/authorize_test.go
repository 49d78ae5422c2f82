package mastodon

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// extractCSRFToken pulls the hidden csrf_token value out of the rendered
// login form — good enough for a test without pulling in an HTML parser.
func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()
	const marker = `name="csrf_token" value="`
	i := strings.Index(body, marker)
	require.NotEqual(t, -1, i, "csrf_token field not found in rendered form")
	rest := body[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestAuthorizeFormRoundTripIssuesRedirectWithCode(t *testing.T) {
	server, upstream := newTestServer()
	app := registerApp(t, server)
	upstream.sessions["alice.bsky.social"] = oauth.UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	h, err := NewAuthorizeHandler(server)
	require.NoError(t, err)

	getReq := httptest.NewRequest(http.MethodGet, "/oauth/authorize?client_id="+app.ClientID+"&redirect_uri="+url.QueryEscape(app.RedirectURI), nil)
	getRec := httptest.NewRecorder()
	h.HandleAuthorize(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	csrfToken := extractCSRFToken(t, getRec.Body.String())
	var cookie *http.Cookie
	for _, c := range getRec.Result().Cookies() {
		if c.Name == loginSessionName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login session cookie not set")

	form := url.Values{
		"csrf_token":   {csrfToken},
		"client_id":    {app.ClientID},
		"redirect_uri": {app.RedirectURI},
		"identifier":   {"alice.bsky.social"},
		"password":     {"app-password"},
	}
	postReq := httptest.NewRequest(http.MethodPost, "/oauth/authorize", strings.NewReader(form.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	postReq.AddCookie(cookie)
	postRec := httptest.NewRecorder()
	h.HandleAuthorize(postRec, postReq)

	assert.Equal(t, http.StatusFound, postRec.Code)
	loc := postRec.Header().Get("Location")
	assert.Contains(t, loc, app.RedirectURI)
	assert.Contains(t, loc, "code=")
}

func TestAuthorizeSubmitRejectsMissingCSRFCookie(t *testing.T) {
	server, upstream := newTestServer()
	app := registerApp(t, server)
	upstream.sessions["alice.bsky.social"] = oauth.UpstreamSession{DID: "did:plc:alice"}

	h, err := NewAuthorizeHandler(server)
	require.NoError(t, err)

	form := url.Values{
		"csrf_token":   {"forged"},
		"client_id":    {app.ClientID},
		"redirect_uri": {app.RedirectURI},
		"identifier":   {"alice.bsky.social"},
		"password":     {"pw"},
	}
	req := httptest.NewRequest(http.MethodPost, "/oauth/authorize", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleAuthorize(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizeRetryAfterBadCredentialsSucceeds(t *testing.T) {
	server, upstream := newTestServer()
	app := registerApp(t, server)
	upstream.sessions["alice.bsky.social"] = oauth.UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}
	upstream.fail = true

	h, err := NewAuthorizeHandler(server)
	require.NoError(t, err)

	getReq := httptest.NewRequest(http.MethodGet, "/oauth/authorize?client_id="+app.ClientID+"&redirect_uri="+url.QueryEscape(app.RedirectURI), nil)
	getRec := httptest.NewRecorder()
	h.HandleAuthorize(getRec, getReq)
	csrfToken := extractCSRFToken(t, getRec.Body.String())
	var cookie *http.Cookie
	for _, c := range getRec.Result().Cookies() {
		if c.Name == loginSessionName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	badForm := url.Values{
		"csrf_token":   {csrfToken},
		"client_id":    {app.ClientID},
		"redirect_uri": {app.RedirectURI},
		"identifier":   {"alice.bsky.social"},
		"password":     {"wrong"},
	}
	badReq := httptest.NewRequest(http.MethodPost, "/oauth/authorize", strings.NewReader(badForm.Encode()))
	badReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	badReq.AddCookie(cookie)
	badRec := httptest.NewRecorder()
	h.HandleAuthorize(badRec, badReq)
	require.Equal(t, http.StatusOK, badRec.Code)
	require.Contains(t, badRec.Body.String(), "error")

	// The retry form must carry a CSRF token that was actually saved to
	// the session cookie, not just rendered into the HTML.
	retryCSRFToken := extractCSRFToken(t, badRec.Body.String())
	var retryCookie *http.Cookie
	for _, c := range badRec.Result().Cookies() {
		if c.Name == loginSessionName {
			retryCookie = c
		}
	}
	require.NotNil(t, retryCookie, "retry form's session cookie was never saved")

	upstream.fail = false
	goodForm := url.Values{
		"csrf_token":   {retryCSRFToken},
		"client_id":    {app.ClientID},
		"redirect_uri": {app.RedirectURI},
		"identifier":   {"alice.bsky.social"},
		"password":     {"app-password"},
	}
	goodReq := httptest.NewRequest(http.MethodPost, "/oauth/authorize", strings.NewReader(goodForm.Encode()))
	goodReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	goodReq.AddCookie(retryCookie)
	goodRec := httptest.NewRecorder()
	h.HandleAuthorize(goodRec, goodReq)

	assert.Equal(t, http.StatusFound, goodRec.Code)
	assert.Contains(t, goodRec.Header().Get("Location"), "code=")
}

func TestAuthorizeSubmitRejectsBadCredentials(t *testing.T) {
	server, upstream := newTestServer()
	app := registerApp(t, server)
	upstream.fail = true

	h, err := NewAuthorizeHandler(server)
	require.NoError(t, err)

	getReq := httptest.NewRequest(http.MethodGet, "/oauth/authorize?client_id="+app.ClientID+"&redirect_uri="+url.QueryEscape(app.RedirectURI), nil)
	getRec := httptest.NewRecorder()
	h.HandleAuthorize(getRec, getReq)
	csrfToken := extractCSRFToken(t, getRec.Body.String())
	var cookie *http.Cookie
	for _, c := range getRec.Result().Cookies() {
		if c.Name == loginSessionName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	form := url.Values{
		"csrf_token":   {csrfToken},
		"client_id":    {app.ClientID},
		"redirect_uri": {app.RedirectURI},
		"identifier":   {"alice.bsky.social"},
		"password":     {"wrong"},
	}
	postReq := httptest.NewRequest(http.MethodPost, "/oauth/authorize", strings.NewReader(form.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	postReq.AddCookie(cookie)
	postRec := httptest.NewRecorder()
	h.HandleAuthorize(postRec, postReq)

	assert.Equal(t, http.StatusOK, postRec.Code)
	assert.Contains(t, postRec.Body.String(), "error")
}
