package translate

import (
	"context"

	"github.com/jefflewis/archaeopteryx/internal/atmodel"
	"github.com/jefflewis/archaeopteryx/internal/mastodon"
)

// reasonToType is the Bluesky-reason to Mastodon-type table from spec.md
// §4.5. Any reason not listed (there are none today) falls back to
// "mention" via the default case in Notification.
var reasonToType = map[atmodel.NotificationReason]string{
	atmodel.ReasonLike:    "favourite",
	atmodel.ReasonRepost:  "reblog",
	atmodel.ReasonFollow:  "follow",
	atmodel.ReasonMention: "mention",
	atmodel.ReasonReply:   "mention",
	atmodel.ReasonQuote:   "reblog",
}

// Notification translates a Bluesky notification into a Mastodon
// Notification (spec.md §4.5). fetcher may be nil, in which case the
// resulting Notification never carries a Status.
func Notification(ctx context.Context, ids IDMapper, fetcher PostFetcher, n atmodel.Notification) (mastodon.Notification, error) {
	id, err := ids.SnowflakeForATURI(ctx, n.URI)
	if err != nil {
		return mastodon.Notification{}, err
	}

	author, err := Profile(ctx, ids, n.Author)
	if err != nil {
		return mastodon.Notification{}, err
	}

	typ, ok := reasonToType[n.Reason]
	if !ok {
		typ = "mention"
	}

	out := mastodon.Notification{
		ID:        idString(id),
		Type:      typ,
		CreatedAt: n.IndexedAt,
		Account:   author,
	}

	if n.SubjectURI != "" && fetcher != nil {
		if post, err := fetcher.FetchPost(ctx, n.SubjectURI); err == nil {
			if status, err := Status(ctx, ids, post); err == nil {
				out.Status = &status
			}
		}
	}

	return out, nil
}
