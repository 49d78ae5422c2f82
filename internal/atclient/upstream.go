// Package atclient implements the gateway's only outbound calls to the
// AT Protocol network: upstream session custody for C6 and post/profile
// lookups for C5's notification subject-fetch. Grounded directly on
// internal/core/communities/token_refresh.go's xrpc.Client +
// api/atproto usage (reauthenticateWithPassword/refreshPDSToken), the
// existing reference for calling the legacy com.atproto.server.* session
// endpoints through indigo.
package atclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/jefflewis/archaeopteryx/internal/oauth"
)

// UpstreamClient implements oauth.UpstreamClient against a PDS's legacy
// com.atproto.server.createSession / .refreshSession endpoints. It does
// not use indigo's DPoP/OAuth-client machinery — that machinery would
// authenticate the gateway itself to a PDS as an OAuth client, a
// different role than holding an end user's session in custody on their
// behalf. See DESIGN.md.
type UpstreamClient struct {
	pdsURL string
}

// NewUpstreamClient builds an UpstreamClient against the given PDS base
// URL (config.Config.ATProtoPDSURL).
func NewUpstreamClient(pdsURL string) *UpstreamClient {
	return &UpstreamClient{pdsURL: pdsURL}
}

var _ oauth.UpstreamClient = (*UpstreamClient)(nil)

// CreateSession implements com.atproto.server.createSession.
func (c *UpstreamClient) CreateSession(ctx context.Context, identifier, password string) (oauth.UpstreamSession, error) {
	client := &xrpc.Client{Host: c.pdsURL}

	output, err := atproto.ServerCreateSession(ctx, client, &atproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return oauth.UpstreamSession{}, fmt.Errorf("createSession: %w", err)
	}
	if output.AccessJwt == "" || output.RefreshJwt == "" {
		return oauth.UpstreamSession{}, errors.New("createSession: response missing tokens")
	}

	return oauth.UpstreamSession{
		DID:        output.Did,
		Handle:     output.Handle,
		AccessJWT:  output.AccessJwt,
		RefreshJWT: output.RefreshJwt,
	}, nil
}

// RefreshSession implements com.atproto.server.refreshSession. The
// refresh token authenticates the request; no access token is required.
func (c *UpstreamClient) RefreshSession(ctx context.Context, refreshJWT string) (oauth.UpstreamSession, error) {
	client := &xrpc.Client{
		Host: c.pdsURL,
		Auth: &xrpc.AuthInfo{RefreshJwt: refreshJWT},
	}

	output, err := atproto.ServerRefreshSession(ctx, client)
	if err != nil {
		var xrpcErr *xrpc.Error
		if errors.As(err, &xrpcErr) && xrpcErr.StatusCode == 401 {
			return oauth.UpstreamSession{}, errors.New("refresh token expired or invalid")
		}
		return oauth.UpstreamSession{}, fmt.Errorf("refreshSession: %w", err)
	}
	if output.AccessJwt == "" || output.RefreshJwt == "" {
		return oauth.UpstreamSession{}, errors.New("refreshSession: response missing tokens")
	}

	return oauth.UpstreamSession{
		DID:        output.Did,
		Handle:     output.Handle,
		AccessJWT:  output.AccessJwt,
		RefreshJWT: output.RefreshJwt,
	}, nil
}
