package mastodon

import (
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// Mount registers the core-constrained Mastodon HTTP surface (spec.md
// §6: app registration, the OAuth token lifecycle, instance metadata)
// onto r.
func Mount(r chi.Router, server *oauth.Server, hostname string) error {
	apps := NewAppsHandler(server)
	token := NewTokenHandler(server)
	revoke := NewRevokeHandler(server)
	instance := NewInstanceHandler(hostname)
	authorize, err := NewAuthorizeHandler(server)
	if err != nil {
		return fmt.Errorf("mastodon: mount: %w", err)
	}

	r.Post("/api/v1/apps", apps.HandleRegister)
	r.Get("/oauth/authorize", authorize.HandleAuthorize)
	r.Post("/oauth/authorize", authorize.HandleAuthorize)
	r.Post("/oauth/token", token.HandleToken)
	r.Post("/oauth/revoke", revoke.HandleRevoke)
	r.Get("/api/v1/instance", instance.HandleV1)
	r.Get("/api/v2/instance", instance.HandleV2)

	return nil
}
