package oauth

import "context"

// UpstreamClient is the narrow surface C6 needs from the AT Protocol PDS:
// legacy session custody via com.atproto.server.createSession and
// .refreshSession. This is deliberately distinct from a DPoP/PKCE
// OAuth-client role, which would authenticate the gateway itself to a
// PDS — here the gateway is instead the OAuth
// *server* for Mastodon clients, holding a end user's upstream session in
// custody. See DESIGN.md.
type UpstreamClient interface {
	// CreateSession exchanges a handle/email + app password for a fresh
	// upstream session.
	CreateSession(ctx context.Context, identifier, password string) (UpstreamSession, error)

	// RefreshSession exchanges a refresh token for a new session.
	RefreshSession(ctx context.Context, refreshJWT string) (UpstreamSession, error)
}
