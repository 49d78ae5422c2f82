package mastodon

import (
	"context"
	"errors"
	"testing"

	"github.com/jefflewis/archaeopteryx/internal/cache"
	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

type stubUpstream struct {
	sessions map[string]oauth.UpstreamSession
	fail     bool
}

func (u *stubUpstream) CreateSession(_ context.Context, identifier, _ string) (oauth.UpstreamSession, error) {
	if u.fail {
		return oauth.UpstreamSession{}, errors.New("bad credentials")
	}
	sess, ok := u.sessions[identifier]
	if !ok {
		return oauth.UpstreamSession{}, errors.New("unknown identifier")
	}
	return sess, nil
}

func (u *stubUpstream) RefreshSession(_ context.Context, refreshJWT string) (oauth.UpstreamSession, error) {
	return oauth.UpstreamSession{}, errors.New("not implemented")
}

func newTestServer() (*oauth.Server, *stubUpstream) {
	c := cache.NewMemoryCache()
	store := oauth.NewCacheStore(c)
	upstream := &stubUpstream{sessions: map[string]oauth.UpstreamSession{}}
	return oauth.NewServer(store, store, store, upstream), upstream
}

func init() {
	if err := oauth.InitCookieStore("test-secret-at-least-32-bytes-long!"); err != nil {
		panic(err)
	}
}
