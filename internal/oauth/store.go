package oauth

import (
	"context"
	"time"

	"github.com/jefflewis/archaeopteryx/internal/cache"
)

// AppStore persists registered applications.
type AppStore interface {
	SaveApp(ctx context.Context, app OAuthApplication) error
	GetApp(ctx context.Context, clientID string) (OAuthApplication, bool, error)
}

// CodeStore persists authorization codes across the issue/exchange hop.
type CodeStore interface {
	SaveCode(ctx context.Context, code AuthorizationCode, ttl time.Duration) error
	GetCode(ctx context.Context, code string) (AuthorizationCode, bool, error)
	MarkUsed(ctx context.Context, code AuthorizationCode) error
}

// TokenStore persists issued access tokens and the DID-keyed upstream
// session they're bound to.
type TokenStore interface {
	SaveToken(ctx context.Context, tok TokenRecord, ttl time.Duration) error
	GetToken(ctx context.Context, accessToken string) (TokenRecord, bool, error)
	DeleteToken(ctx context.Context, accessToken string) error

	SaveSession(ctx context.Context, did string, sess UpstreamSession, ttl time.Duration) error
	GetSession(ctx context.Context, did string) (UpstreamSession, bool, error)
}

// cacheStore implements AppStore, CodeStore, and TokenStore over a single
// internal/cache.Cache: one interface, one backing store, one method per
// lifecycle operation, targeting the cache instead of a SQL store.
type cacheStore struct {
	c cache.Cache
}

// NewCacheStore builds the combined AppStore/CodeStore/TokenStore over c.
func NewCacheStore(c cache.Cache) *cacheStore {
	return &cacheStore{c: c}
}

func (s *cacheStore) SaveApp(ctx context.Context, app OAuthApplication) error {
	return s.c.Set(ctx, cache.OAuthAppKey(app.ClientID), app, 0)
}

func (s *cacheStore) GetApp(ctx context.Context, clientID string) (OAuthApplication, bool, error) {
	return cache.Get[OAuthApplication](ctx, s.c, cache.OAuthAppKey(clientID))
}

func (s *cacheStore) SaveCode(ctx context.Context, code AuthorizationCode, ttl time.Duration) error {
	return s.c.Set(ctx, cache.OAuthCodeKey(code.Code), code, ttl)
}

func (s *cacheStore) GetCode(ctx context.Context, code string) (AuthorizationCode, bool, error) {
	return cache.Get[AuthorizationCode](ctx, s.c, cache.OAuthCodeKey(code))
}

func (s *cacheStore) MarkUsed(ctx context.Context, code AuthorizationCode) error {
	code.Used = true
	return s.c.Set(ctx, cache.OAuthCodeKey(code.Code), code, AuthCodeUsedTTL)
}

func (s *cacheStore) SaveToken(ctx context.Context, tok TokenRecord, ttl time.Duration) error {
	return s.c.Set(ctx, cache.OAuthTokenKey(tok.AccessToken), tok, ttl)
}

func (s *cacheStore) GetToken(ctx context.Context, accessToken string) (TokenRecord, bool, error) {
	return cache.Get[TokenRecord](ctx, s.c, cache.OAuthTokenKey(accessToken))
}

func (s *cacheStore) DeleteToken(ctx context.Context, accessToken string) error {
	return s.c.Delete(ctx, cache.OAuthTokenKey(accessToken))
}

func (s *cacheStore) SaveSession(ctx context.Context, did string, sess UpstreamSession, ttl time.Duration) error {
	return s.c.Set(ctx, cache.SessionKey(did), sess, ttl)
}

func (s *cacheStore) GetSession(ctx context.Context, did string) (UpstreamSession, bool, error) {
	return cache.Get[UpstreamSession](ctx, s.c, cache.SessionKey(did))
}

func ttlFor(tok TokenRecord) time.Duration {
	if tok.ExpiresIn <= 0 {
		return DefaultTokenTTL
	}
	return time.Duration(tok.ExpiresIn) * time.Second
}

// ExpiresAt returns when tok stops being valid (spec.md §4.6: "past
// created_at + expires_in, defaulting to 7 days when expires_in is
// unset").
func (tok TokenRecord) ExpiresAt() time.Time {
	return tok.CreatedAt.Add(ttlFor(tok))
}
