package oauth

import (
	"strings"

	"github.com/jefflewis/archaeopteryx/internal/apierrors"
)

// knownScopes is the closed set of scopes this gateway recognizes.
// Mastodon clients commonly request "read", "write", and "follow"; this
// gateway only ever grants "read" and "write" since there's no
// follow-request workflow in scope (spec.md §6 Non-goals).
var knownScopes = map[string]bool{
	"read":  true,
	"write": true,
}

// ParseScopes parses a space-separated scope string per spec.md §4.6: an
// empty string defaults to ["read"]; any unknown scope fails validation,
// reporting which one.
func ParseScopes(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{DefaultScope}, nil
	}

	fields := strings.Fields(raw)
	scopes := make([]string, 0, len(fields))
	for _, s := range fields {
		if !knownScopes[s] {
			return nil, apierrors.ValidationFailed("scope", "unknown scope: "+s)
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}
