package atclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	indigoIdentity "github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/syntax"
)

// HandleResolver resolves Bluesky handles to DIDs against the PLC
// directory and handle DNS/HTTPS well-known records, satisfying
// idmap.HandleResolver. The cache-then-fallthrough behavior idmap itself
// already provides (a caching resolver's role in similar codebases);
// this type only needs to be the uncached base lookup
// (identity.baseResolver's role).
type HandleResolver struct {
	directory indigoIdentity.Directory
}

// NewHandleResolver builds a resolver against plcURL, defaulting to the
// public PLC directory when empty.
func NewHandleResolver(plcURL string) *HandleResolver {
	if plcURL == "" {
		plcURL = "https://plc.directory"
	}
	return &HandleResolver{
		directory: &indigoIdentity.BaseDirectory{
			PLCURL:     plcURL,
			HTTPClient: http.Client{Timeout: 10 * time.Second},
		},
	}
}

// ResolveHandle implements idmap.HandleResolver.
func (r *HandleResolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", fmt.Errorf("atclient: empty handle")
	}

	atID, err := syntax.ParseAtIdentifier(handle)
	if err != nil {
		return "", fmt.Errorf("atclient: invalid handle %q: %w", handle, err)
	}

	ident, err := r.directory.Lookup(ctx, *atID)
	if err != nil {
		return "", fmt.Errorf("atclient: resolve handle %q: %w", handle, err)
	}

	return ident.DID.String(), nil
}
