package translate

import (
	"context"
	"strconv"
	"strings"

	"github.com/jefflewis/archaeopteryx/internal/atmodel"
	"github.com/jefflewis/archaeopteryx/internal/facets"
	"github.com/jefflewis/archaeopteryx/internal/mastodon"
)

// Status translates a Bluesky post view into a Mastodon Status (spec.md
// §4.5). Quote-post embeds are translated one level deep only: a quoted
// post's own quote embed (if any) is dropped rather than recursed into,
// matching the one-level nesting spec.md §9 calls for.
func Status(ctx context.Context, ids IDMapper, p atmodel.Post) (mastodon.Status, error) {
	return translateStatus(ctx, ids, p, true)
}

func translateStatus(ctx context.Context, ids IDMapper, p atmodel.Post, allowNestedReblog bool) (mastodon.Status, error) {
	id, err := ids.SnowflakeForATURI(ctx, p.URI)
	if err != nil {
		return mastodon.Status{}, err
	}

	author, err := Profile(ctx, ids, p.Author)
	if err != nil {
		return mastodon.Status{}, err
	}

	converted := make([]facets.Facet, len(p.Facets))
	copy(converted, p.Facets)
	content := facets.Render(p.Text, converted, nil)

	status := mastodon.Status{
		ID:              idString(id),
		URI:             p.URI,
		CreatedAt:       p.CreatedAt,
		Content:         content,
		Visibility:      "public",
		Sensitive:       false,
		SpoilerText:     "",
		Account:         author,
		RepliesCount:    p.ReplyCount,
		ReblogsCount:    p.RepostCount,
		FavouritesCount: p.LikeCount,
		Mentions:        extractMentions(ctx, ids, p.Text, p.Facets),
		Tags:            extractTags(p.Facets),
	}

	if did, _, rkey, ok := atmodel.SplitATURI(p.URI); ok {
		url := mastodon.StatusURL(p.Author.Handle, rkey)
		status.URL = &url
		_ = did
	}

	if p.Reply != nil {
		replyID, err := ids.SnowflakeForATURI(ctx, p.Reply.ParentURI)
		if err == nil {
			s := idString(replyID)
			status.InReplyToID = &s
		}
		if p.Reply.ParentDID != "" {
			accID, err := ids.SnowflakeForDID(ctx, p.Reply.ParentDID)
			if err == nil {
				s := idString(accID)
				status.InReplyToAccountID = &s
			}
		}
	}

	if p.Embed != nil {
		for i, img := range p.Embed.Images {
			status.MediaAttachments = append(status.MediaAttachments, mastodon.MediaAttachment{
				ID:         idString(id) + "-img-" + strconv.Itoa(i),
				Type:       "image",
				URL:        img.Fullsize,
				PreviewURL: img.Thumb,
				Description: nonEmptyPtr(img.Alt),
			})
		}
		if p.Embed.External != nil {
			card := mastodon.Card{
				URL:         p.Embed.External.URI,
				Title:       p.Embed.External.Title,
				Description: p.Embed.External.Description,
				Type:        "link",
			}
			if p.Embed.External.Thumb != "" {
				card.Image = &p.Embed.External.Thumb
			}
			status.Card = &card
		}
		if p.Embed.Record != nil && allowNestedReblog {
			reblog, err := translateStatus(ctx, ids, *p.Embed.Record, false)
			if err == nil {
				status.Reblog = &reblog
			}
		}
	}

	return status, nil
}

func extractMentions(ctx context.Context, ids IDMapper, text string, fs []facets.Facet) []mastodon.Mention {
	var mentions []mastodon.Mention
	for _, f := range fs {
		for _, feature := range f.Features {
			if feature.Kind != facets.FeatureMention {
				continue
			}
			if f.Start < 0 || f.End > len(text) || f.Start > f.End {
				continue
			}
			handle := strings.TrimPrefix(text[f.Start:f.End], "@")
			accID, err := ids.SnowflakeForDID(ctx, feature.DID)
			if err != nil {
				continue
			}
			mentions = append(mentions, mastodon.Mention{
				ID:       idString(accID),
				Username: usernameFromHandle(handle),
				Acct:     handle,
				URL:      mastodon.ProfileURL(handle),
			})
			break
		}
	}
	return mentions
}

func extractTags(fs []facets.Facet) []mastodon.Tag {
	var tags []mastodon.Tag
	for _, f := range fs {
		for _, feature := range f.Features {
			if feature.Kind != facets.FeatureTag {
				continue
			}
			tags = append(tags, mastodon.Tag{
				Name: feature.Name,
				URL:  facets.HashtagURL(feature.Name),
			})
			break
		}
	}
	return tags
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
