package oauth

import (
	"context"
	"time"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
)

// Server drives the OAuth 2.0 state machine of spec.md §4.6, composing an
// AppStore/CodeStore/TokenStore trio over internal/cache with an
// UpstreamClient that holds the actual Bluesky session.
type Server struct {
	Apps     AppStore
	Codes    CodeStore
	Tokens   TokenStore
	Upstream UpstreamClient
	now      func() time.Time
}

// NewServer builds a Server. store is typically a *cacheStore satisfying
// all three of AppStore/CodeStore/TokenStore, but the fields are split so
// tests can substitute independent doubles.
func NewServer(apps AppStore, codes CodeStore, tokens TokenStore, upstream UpstreamClient) *Server {
	return &Server{Apps: apps, Codes: codes, Tokens: tokens, Upstream: upstream, now: time.Now}
}

// RegisterApp persists a new client application (spec.md §4.6 "register").
func (s *Server) RegisterApp(ctx context.Context, clientName, redirectURI, scopeStr, website string) (OAuthApplication, error) {
	if clientName == "" {
		return OAuthApplication{}, apierrors.ValidationFailed("client_name", "required")
	}
	if redirectURI == "" {
		return OAuthApplication{}, apierrors.ValidationFailed("redirect_uris", "required")
	}
	scopes, err := ParseScopes(scopeStr)
	if err != nil {
		return OAuthApplication{}, err
	}

	clientID, err := randomToken()
	if err != nil {
		return OAuthApplication{}, apierrors.Internal(err)
	}
	clientSecret, err := randomToken()
	if err != nil {
		return OAuthApplication{}, apierrors.Internal(err)
	}

	app := OAuthApplication{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Scopes:       scopes,
		ClientName:   clientName,
		Website:      website,
		CreatedAt:    s.now(),
	}
	if err := s.Apps.SaveApp(ctx, app); err != nil {
		return OAuthApplication{}, apierrors.Internal(err)
	}
	return app, nil
}

// Authorize validates redirect_uri against the registered app, creates an
// upstream session from the submitted credentials, and issues a 10-minute
// single-use authorization code (spec.md §4.6). A credential failure maps
// to unauthorized.
func (s *Server) Authorize(ctx context.Context, clientID, redirectURI, identifier, password string) (string, error) {
	app, ok, err := s.Apps.GetApp(ctx, clientID)
	if err != nil {
		return "", apierrors.Internal(err)
	}
	if !ok {
		return "", apierrors.Unauthorized("unknown client_id")
	}
	if redirectURI != app.RedirectURI {
		return "", apierrors.Unauthorized("redirect_uri mismatch")
	}

	sess, err := s.Upstream.CreateSession(ctx, identifier, password)
	if err != nil {
		return "", apierrors.Unauthorized("invalid credentials")
	}

	code, err := randomToken()
	if err != nil {
		return "", apierrors.Internal(err)
	}

	authCode := AuthorizationCode{
		Code:        code,
		ClientID:    clientID,
		RedirectURI: redirectURI,
		Scopes:      app.Scopes,
		DID:         sess.DID,
		Handle:      sess.Handle,
		Password:    password,
		CreatedAt:   s.now(),
		Used:        false,
	}
	if err := s.Codes.SaveCode(ctx, authCode, AuthCodeTTL); err != nil {
		return "", apierrors.Internal(err)
	}
	return code, nil
}

// ExchangeCode implements grant_type=authorization_code: validates the
// code against the client secret, expiry, and reuse, marks it used,
// re-authenticates upstream with the code's stored credentials, and
// issues a 7-day access token with a DID-indexed session (spec.md §4.6).
func (s *Server) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (TokenRecord, error) {
	app, ok, err := s.Apps.GetApp(ctx, clientID)
	if err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}
	if !ok || app.ClientSecret != clientSecret {
		return TokenRecord{}, apierrors.Unauthorized("client authentication failed")
	}

	authCode, ok, err := s.Codes.GetCode(ctx, code)
	if err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}
	if !ok {
		return TokenRecord{}, apierrors.Unauthorized("unknown or expired code")
	}
	if authCode.Used {
		return TokenRecord{}, apierrors.Unauthorized("code already used")
	}
	if authCode.ClientID != clientID {
		return TokenRecord{}, apierrors.Unauthorized("client_id mismatch")
	}
	if redirectURI != "" && authCode.RedirectURI != redirectURI {
		return TokenRecord{}, apierrors.Unauthorized("redirect_uri mismatch")
	}
	if s.now().After(authCode.CreatedAt.Add(AuthCodeTTL)) {
		return TokenRecord{}, apierrors.Unauthorized("code expired")
	}

	if err := s.Codes.MarkUsed(ctx, authCode); err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}

	sess, err := s.Upstream.CreateSession(ctx, authCode.Handle, authCode.Password)
	if err != nil {
		return TokenRecord{}, apierrors.Unauthorized("upstream re-authentication failed")
	}

	return s.issueToken(ctx, clientID, sess, authCode.Scopes)
}

// PasswordGrant implements grant_type=password: skips the AuthCode step
// and creates the token directly (spec.md §4.6).
func (s *Server) PasswordGrant(ctx context.Context, clientID, clientSecret, identifier, password, scopeStr string) (TokenRecord, error) {
	app, ok, err := s.Apps.GetApp(ctx, clientID)
	if err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}
	if !ok || app.ClientSecret != clientSecret {
		return TokenRecord{}, apierrors.Unauthorized("client authentication failed")
	}

	scopes, err := ParseScopes(scopeStr)
	if err != nil {
		return TokenRecord{}, err
	}

	sess, err := s.Upstream.CreateSession(ctx, identifier, password)
	if err != nil {
		return TokenRecord{}, apierrors.Unauthorized("invalid credentials")
	}

	return s.issueToken(ctx, clientID, sess, scopes)
}

func (s *Server) issueToken(ctx context.Context, clientID string, sess UpstreamSession, scopes []string) (TokenRecord, error) {
	accessToken, err := randomToken()
	if err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}

	tok := TokenRecord{
		AccessToken: accessToken,
		ClientID:    clientID,
		DID:         sess.DID,
		Handle:      sess.Handle,
		Scopes:      scopes,
		CreatedAt:   s.now(),
		ExpiresIn:   int64(DefaultTokenTTL.Seconds()),
	}
	if err := s.Tokens.SaveToken(ctx, tok, ttlFor(tok)); err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}
	if err := s.Tokens.SaveSession(ctx, sess.DID, sess, DefaultTokenTTL); err != nil {
		return TokenRecord{}, apierrors.Internal(err)
	}
	return tok, nil
}

// Validate looks up an access token and returns its UserContext,
// unauthorized if absent or expired (spec.md §4.6). The UserContext
// carries the DID-keyed upstream session alongside the handle, since it
// is the sole conduit a downstream AT Protocol call is made through
// (spec.md §3).
func (s *Server) Validate(ctx context.Context, accessToken string) (UserContext, error) {
	tok, ok, err := s.Tokens.GetToken(ctx, accessToken)
	if err != nil {
		return UserContext{}, apierrors.Internal(err)
	}
	if !ok || s.now().After(tok.ExpiresAt()) {
		return UserContext{}, apierrors.Unauthorized("invalid or expired token")
	}

	sess, ok, err := s.Tokens.GetSession(ctx, tok.DID)
	if err != nil {
		return UserContext{}, apierrors.Internal(err)
	}
	if !ok {
		return UserContext{}, apierrors.Unauthorized("no upstream session on file")
	}

	return UserContext{DID: tok.DID, Handle: tok.Handle, Session: sess}, nil
}

// Refresh exchanges the stored refresh token for a new upstream session,
// replacing both the DID-keyed session record and the token record while
// preserving the access token's original expiry (spec.md §4.6: "same
// remaining TTL semantics"). A failed upstream refresh is terminal
// unauthorized.
func (s *Server) Refresh(ctx context.Context, accessToken string) (UserContext, error) {
	tok, ok, err := s.Tokens.GetToken(ctx, accessToken)
	if err != nil {
		return UserContext{}, apierrors.Internal(err)
	}
	if !ok {
		return UserContext{}, apierrors.Unauthorized("unknown token")
	}

	sess, ok, err := s.Tokens.GetSession(ctx, tok.DID)
	if err != nil {
		return UserContext{}, apierrors.Internal(err)
	}
	if !ok {
		return UserContext{}, apierrors.Unauthorized("no upstream session on file")
	}

	fresh, err := s.Upstream.RefreshSession(ctx, sess.RefreshJWT)
	if err != nil {
		return UserContext{}, apierrors.Unauthorized("upstream refresh failed")
	}

	remaining := tok.ExpiresAt().Sub(s.now())
	if remaining <= 0 {
		return UserContext{}, apierrors.Unauthorized("token expired")
	}

	if err := s.Tokens.SaveSession(ctx, tok.DID, fresh, remaining); err != nil {
		return UserContext{}, apierrors.Internal(err)
	}
	tok.Handle = fresh.Handle
	if err := s.Tokens.SaveToken(ctx, tok, remaining); err != nil {
		return UserContext{}, apierrors.Internal(err)
	}

	return UserContext{DID: tok.DID, Handle: fresh.Handle, Session: fresh}, nil
}

// Revoke deletes the token record. Idempotent (spec.md §4.6).
func (s *Server) Revoke(ctx context.Context, accessToken string) error {
	if err := s.Tokens.DeleteToken(ctx, accessToken); err != nil {
		return apierrors.Internal(err)
	}
	return nil
}
