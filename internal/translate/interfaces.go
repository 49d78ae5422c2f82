// Package translate implements the three pure translators (C5) that turn
// Bluesky record/view shapes (internal/atmodel) into Mastodon entities
// (internal/mastodon), grounded on an existing Bluesky-post-fetcher's
// response-mapping code.
package translate

import (
	"context"
	"strconv"

	"github.com/jefflewis/archaeopteryx/internal/atmodel"
)

// IDMapper is the subset of internal/idmap.Mapper the translators need.
// Defined locally as a small consumer-side interface so tests can supply
// a stub instead of a live mapper.
type IDMapper interface {
	SnowflakeForDID(ctx context.Context, did string) (int64, error)
	SnowflakeForATURI(ctx context.Context, aturi string) (int64, error)
}

// PostFetcher resolves a notification's subject AT-URI to the post it
// names, for the Notification→Notification translator's optional status
// embedding (spec.md §4.5). A
// nil PostFetcher or any error means the translated notification simply
// omits its Status field.
type PostFetcher interface {
	FetchPost(ctx context.Context, uri string) (atmodel.Post, error)
}

// idString renders a Snowflake ID as the decimal string Mastodon clients
// expect for entity IDs.
func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
