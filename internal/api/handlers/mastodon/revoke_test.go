package mastodon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

func TestHandleRevokeReturns200ForKnownToken(t *testing.T) {
	server, upstream := newTestServer()
	app := registerApp(t, server)
	upstream.sessions["alice.bsky.social"] = oauth.UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}
	tok, err := server.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	h := NewRevokeHandler(server)
	form := url.Values{"token": {tok.AccessToken}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleRevoke(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	_, err = server.Validate(context.Background(), tok.AccessToken)
	assert.Error(t, err)
}

func TestHandleRevokeReturns200ForUnknownToken(t *testing.T) {
	server, _ := newTestServer()

	h := NewRevokeHandler(server)
	form := url.Values{"token": {"never-issued"}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.HandleRevoke(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
