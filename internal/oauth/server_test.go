package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflewis/archaeopteryx/internal/cache"
)

type stubUpstream struct {
	sessions map[string]UpstreamSession // identifier -> session
	refresh  map[string]UpstreamSession // refreshJWT -> session
	failCreate bool
	failRefresh bool
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{sessions: map[string]UpstreamSession{}, refresh: map[string]UpstreamSession{}}
}

func (u *stubUpstream) CreateSession(_ context.Context, identifier, _ string) (UpstreamSession, error) {
	if u.failCreate {
		return UpstreamSession{}, errors.New("bad credentials")
	}
	sess, ok := u.sessions[identifier]
	if !ok {
		return UpstreamSession{}, errors.New("unknown identifier")
	}
	return sess, nil
}

func (u *stubUpstream) RefreshSession(_ context.Context, refreshJWT string) (UpstreamSession, error) {
	if u.failRefresh {
		return UpstreamSession{}, errors.New("refresh rejected")
	}
	sess, ok := u.refresh[refreshJWT]
	if !ok {
		return UpstreamSession{}, errors.New("unknown refresh token")
	}
	return sess, nil
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time         { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestServer(t *testing.T) (*Server, *stubUpstream, *fakeClock) {
	t.Helper()
	c := cache.NewMemoryCache()
	store := NewCacheStore(c)
	upstream := newStubUpstream()
	s := NewServer(store, store, store, upstream)
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clk.Now
	return s, upstream, clk
}

func registerTestApp(t *testing.T, s *Server) OAuthApplication {
	t.Helper()
	app, err := s.RegisterApp(context.Background(), "Test Client", "https://client.example/cb", "", "")
	require.NoError(t, err)
	return app
}

func TestRegisterAppDefaultsScopeToRead(t *testing.T) {
	s, _, _ := newTestServer(t)
	app := registerTestApp(t, s)
	assert.Equal(t, []string{"read"}, app.Scopes)
	assert.NotEmpty(t, app.ClientID)
	assert.NotEmpty(t, app.ClientSecret)
}

func TestRegisterAppRejectsUnknownScope(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, err := s.RegisterApp(context.Background(), "Test", "https://x/cb", "read write teleport", "")
	assert.Error(t, err)
}

func TestAuthorizeCreatesUpstreamSessionAndCode(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", AccessJWT: "a1", RefreshJWT: "r1"}

	code, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "app-password")
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}

func TestAuthorizeRejectsRedirectURIMismatch(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice"}

	_, err := s.Authorize(context.Background(), app.ClientID, "https://evil.example/cb", "alice.bsky.social", "pw")
	assert.Error(t, err)
}

func TestAuthorizeRejectsBadCredentials(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.failCreate = true

	_, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "wrong")
	assert.Error(t, err)
}

func TestExchangeCodeHappyPath(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", AccessJWT: "a1", RefreshJWT: "r1"}

	code, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "app-password")
	require.NoError(t, err)

	tok, err := s.ExchangeCode(context.Background(), app.ClientID, app.ClientSecret, code, app.RedirectURI)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "did:plc:alice", tok.DID)
}

func TestExchangeCodeRejectsReuse(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	code, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "pw")
	require.NoError(t, err)

	_, err = s.ExchangeCode(context.Background(), app.ClientID, app.ClientSecret, code, app.RedirectURI)
	require.NoError(t, err)

	_, err = s.ExchangeCode(context.Background(), app.ClientID, app.ClientSecret, code, app.RedirectURI)
	assert.Error(t, err, "a used code must not be exchangeable again")
}

func TestExchangeCodeRejectsWrongClientSecret(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	code, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "pw")
	require.NoError(t, err)

	_, err = s.ExchangeCode(context.Background(), app.ClientID, "wrong-secret", code, app.RedirectURI)
	assert.Error(t, err)
}

func TestExchangeCodeRejectsExpiredCode(t *testing.T) {
	s, upstream, clk := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	code, err := s.Authorize(context.Background(), app.ClientID, app.RedirectURI, "alice.bsky.social", "pw")
	require.NoError(t, err)

	clk.Advance(11 * time.Minute)
	_, err = s.ExchangeCode(context.Background(), app.ClientID, app.ClientSecret, code, app.RedirectURI)
	assert.Error(t, err)
}

func TestPasswordGrantIssuesTokenDirectly(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", RefreshJWT: "r1"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "read")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice", tok.DID)
}

func TestValidateRejectsUnknownToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, err := s.Validate(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	s, upstream, clk := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	clk.Advance(8 * 24 * time.Hour)
	_, err = s.Validate(context.Background(), tok.AccessToken)
	assert.Error(t, err)
}

func TestValidateAcceptsFreshToken(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	ctx, err := s.Validate(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice", ctx.DID)
	assert.Equal(t, "alice.bsky.social", ctx.Handle)
	assert.Equal(t, "did:plc:alice", ctx.Session.DID)
}

func TestRefreshReplacesSessionAndPreservesTokenValue(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", RefreshJWT: "r1"}
	upstream.refresh["r1"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", AccessJWT: "a2", RefreshJWT: "r2"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	ctx, err := s.Refresh(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice", ctx.DID)
	assert.Equal(t, "a2", ctx.Session.AccessJWT)

	sess, ok, err := s.Tokens.GetSession(context.Background(), "did:plc:alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a2", sess.AccessJWT)

	refreshedTok, ok, err := s.Tokens.GetToken(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tok.CreatedAt, refreshedTok.CreatedAt, "Refresh must not extend the token's logical expiry")
}

func TestRefreshFailsTerminallyOnUpstreamRejection(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social", RefreshJWT: "r1"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	upstream.failRefresh = true
	_, err = s.Refresh(context.Background(), tok.AccessToken)
	assert.Error(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	s, upstream, _ := newTestServer(t)
	app := registerTestApp(t, s)
	upstream.sessions["alice.bsky.social"] = UpstreamSession{DID: "did:plc:alice", Handle: "alice.bsky.social"}

	tok, err := s.PasswordGrant(context.Background(), app.ClientID, app.ClientSecret, "alice.bsky.social", "pw", "")
	require.NoError(t, err)

	require.NoError(t, s.Revoke(context.Background(), tok.AccessToken))
	require.NoError(t, s.Revoke(context.Background(), tok.AccessToken))

	_, err = s.Validate(context.Background(), tok.AccessToken)
	assert.Error(t, err)
}
