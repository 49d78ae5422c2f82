// Package oauth implements C6, the Mastodon-client-facing OAuth 2.0
// server. It uses a session-store interface shape (one method per
// operation, a typed record per lifecycle stage) backed by internal/cache
// instead of a SQL store, since spec.md §6's Non-goals exclude any
// durable store beyond the cache, and targets custody of an upstream
// Bluesky session rather than a DPoP/PKCE AT Protocol OAuth client role —
// see DESIGN.md.
package oauth

import "time"

// OAuthApplication is a registered client app (spec.md §4.6 "register").
type OAuthApplication struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	RedirectURI  string    `json:"redirect_uri"`
	Scopes       []string  `json:"scopes"`
	ClientName   string    `json:"client_name"`
	Website      string    `json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthorizationCode is a single-use authorization-code grant artifact,
// TTL 10 minutes until exchanged, then shortened to 60 seconds
// (spec.md §4.6). Password is the upstream Bluesky app password the user
// typed into the login form; it is held in plaintext for the few minutes
// between code issuance and exchange so the exchange step can create a
// fresh upstream session with the original credentials instead of reusing
// the one created when the login form was submitted. See DESIGN.md open
// question: this is a conscious spec.md §9 tradeoff, not an oversight.
type AuthorizationCode struct {
	Code        string    `json:"code"`
	ClientID    string    `json:"client_id"`
	RedirectURI string    `json:"redirect_uri"`
	Scopes      []string  `json:"scopes"`
	DID         string    `json:"did"`
	Handle      string    `json:"handle"`
	Password    string    `json:"password"`
	CreatedAt   time.Time `json:"created_at"`
	Used        bool      `json:"used"`
}

// UpstreamSession is the Bluesky session this gateway holds in custody on
// a user's behalf, created via com.atproto.server.createSession and
// refreshed via com.atproto.server.refreshSession.
type UpstreamSession struct {
	DID          string `json:"did"`
	Handle       string `json:"handle"`
	AccessJWT    string `json:"access_jwt"`
	RefreshJWT   string `json:"refresh_jwt"`
}

// TokenRecord is an issued access token's server-side state.
type TokenRecord struct {
	AccessToken string    `json:"access_token"`
	ClientID    string    `json:"client_id"`
	DID         string    `json:"did"`
	Handle      string    `json:"handle"`
	Scopes      []string  `json:"scopes"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresIn   int64     `json:"expires_in"` // seconds; 0 means "use DefaultTokenTTL"
}

// UserContext is what a validated request resolves to: the sole conduit
// from authentication to downstream AT Protocol calls (spec.md §3). A
// route handler calls the upstream client with Session rather than
// re-deriving it.
type UserContext struct {
	DID     string
	Handle  string
	Session UpstreamSession
}

// Default lifetimes, per spec.md §4.6.
const (
	DefaultTokenTTL     = 7 * 24 * time.Hour
	AuthCodeTTL         = 10 * time.Minute
	AuthCodeUsedTTL     = 60 * time.Second
	DefaultScope        = "read"
)
