package atclient

import (
	"context"
	"fmt"
	"time"

	"github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/jefflewis/archaeopteryx/internal/atmodel"
	"github.com/jefflewis/archaeopteryx/internal/facets"
	"github.com/jefflewis/archaeopteryx/internal/translate"
)

// maxQuoteDepth bounds how deep PostFetcher will follow a quote-post
// embed when assembling atmodel.Post.Embed.Record. translate.Status
// already renders only one level, but the fetch itself is capped
// independently so a pathological quote chain can't turn one
// notification fetch into an unbounded number of upstream calls.
const maxQuoteDepth = 2

// PostFetcher implements translate.PostFetcher against the configured
// AppView, fetching the record via com.atproto.repo.getRecord (grounded
// on watzon-lining/client/posts.go's GetPost) and the author's profile
// via app.bsky.actor.getProfile.
type PostFetcher struct {
	serviceURL string
}

// NewPostFetcher builds a PostFetcher against the given AppView base URL
// (config.Config.ATProtoServiceURL).
func NewPostFetcher(serviceURL string) *PostFetcher {
	return &PostFetcher{serviceURL: serviceURL}
}

var _ translate.PostFetcher = (*PostFetcher)(nil)

// FetchPost implements translate.PostFetcher.
func (f *PostFetcher) FetchPost(ctx context.Context, uri string) (atmodel.Post, error) {
	return f.fetchPost(ctx, uri, 0)
}

func (f *PostFetcher) fetchPost(ctx context.Context, uri string, depth int) (atmodel.Post, error) {
	did, collection, rkey, ok := atmodel.SplitATURI(uri)
	if !ok {
		return atmodel.Post{}, fmt.Errorf("atclient: malformed at-uri %q", uri)
	}

	client := &xrpc.Client{Host: f.serviceURL}

	record, err := atproto.RepoGetRecord(ctx, client, "", collection, did, rkey)
	if err != nil {
		return atmodel.Post{}, fmt.Errorf("atclient: getRecord %s: %w", uri, err)
	}

	feedPost, ok := record.Value.Val.(*appbsky.FeedPost)
	if !ok {
		return atmodel.Post{}, fmt.Errorf("atclient: %s is not an app.bsky.feed.post record", uri)
	}

	author, err := f.fetchProfile(ctx, client, did)
	if err != nil {
		return atmodel.Post{}, err
	}

	post := atmodel.Post{
		URI:       uri,
		CID:       derefStr(record.Cid),
		Author:    author,
		Text:      feedPost.Text,
		Facets:    convertFacets(feedPost),
		CreatedAt: parseTimestamp(feedPost.CreatedAt),
	}

	if feedPost.Reply != nil && feedPost.Reply.Parent != nil {
		parentDID, _, _, _ := atmodel.SplitATURI(feedPost.Reply.Parent.Uri)
		post.Reply = &atmodel.ReplyRef{ParentURI: feedPost.Reply.Parent.Uri, ParentDID: parentDID}
	}

	post.Embed, err = f.convertEmbed(ctx, feedPost, depth)
	if err != nil {
		return atmodel.Post{}, err
	}

	return post, nil
}

func (f *PostFetcher) fetchProfile(ctx context.Context, client *xrpc.Client, did string) (atmodel.Profile, error) {
	profile, err := appbsky.ActorGetProfile(ctx, client, did)
	if err != nil {
		return atmodel.Profile{}, fmt.Errorf("atclient: getProfile %s: %w", did, err)
	}

	return atmodel.Profile{
		DID:            profile.Did,
		Handle:         profile.Handle,
		DisplayName:    derefStr(profile.DisplayName),
		Description:    derefStr(profile.Description),
		Avatar:         derefStr(profile.Avatar),
		Banner:         derefStr(profile.Banner),
		FollowersCount: int(derefInt64(profile.FollowersCount)),
		FollowsCount:   int(derefInt64(profile.FollowsCount)),
		PostsCount:     int(derefInt64(profile.PostsCount)),
		IndexedAt:      parseTimestamp(derefStr(profile.IndexedAt)),
	}, nil
}

func convertFacets(feedPost *appbsky.FeedPost) []facets.Facet {
	converted := make([]facets.Facet, 0, len(feedPost.Facets))
	for _, facet := range feedPost.Facets {
		if facet.Index == nil {
			continue
		}
		f := facets.Facet{
			ByteSlice: facets.ByteSlice{
				Start: int(facet.Index.ByteStart),
				End:   int(facet.Index.ByteEnd),
			},
		}
		for _, feature := range facet.Features {
			switch {
			case feature.RichtextFacet_Link != nil:
				f.Features = append(f.Features, facets.Feature{Kind: facets.FeatureLink, URI: feature.RichtextFacet_Link.Uri})
			case feature.RichtextFacet_Mention != nil:
				f.Features = append(f.Features, facets.Feature{Kind: facets.FeatureMention, DID: feature.RichtextFacet_Mention.Did})
			case feature.RichtextFacet_Tag != nil:
				f.Features = append(f.Features, facets.Feature{Kind: facets.FeatureTag, Name: feature.RichtextFacet_Tag.Tag})
			}
		}
		if len(f.Features) > 0 {
			converted = append(converted, f)
		}
	}
	return converted
}

// convertEmbed maps the record-side embed union (app.bsky.embed.*) onto
// atmodel.Embed, grounded on watzon-lining/post/embed.go's case-by-case
// union handling. Image blob refs are resolved to
// com.atproto.sync.getBlob URLs on the configured service host.
func (f *PostFetcher) convertEmbed(ctx context.Context, feedPost *appbsky.FeedPost, depth int) (*atmodel.Embed, error) {
	if feedPost.Embed == nil {
		return nil, nil
	}

	e := feedPost.Embed
	out := &atmodel.Embed{}

	switch {
	case e.EmbedImages != nil:
		for _, img := range e.EmbedImages.Images {
			url := f.blobURL(img.Image)
			out.Images = append(out.Images, atmodel.EmbedImage{Fullsize: url, Thumb: url, Alt: img.Alt})
		}
	case e.EmbedExternal != nil:
		ext := e.EmbedExternal.External
		out.External = &atmodel.EmbedExternal{
			URI:         ext.Uri,
			Title:       ext.Title,
			Description: ext.Description,
			Thumb:       f.blobURL(ext.Thumb),
		}
	case e.EmbedRecord != nil:
		if depth < maxQuoteDepth {
			if quoted, err := f.fetchPost(ctx, e.EmbedRecord.Record.Uri, depth+1); err == nil {
				out.Record = &quoted
			}
		}
	case e.EmbedRecordWithMedia != nil:
		if media := e.EmbedRecordWithMedia.Media; media != nil && media.EmbedImages != nil {
			for _, img := range media.EmbedImages.Images {
				url := f.blobURL(img.Image)
				out.Images = append(out.Images, atmodel.EmbedImage{Fullsize: url, Thumb: url, Alt: img.Alt})
			}
		}
		if depth < maxQuoteDepth && e.EmbedRecordWithMedia.Record != nil {
			if quoted, err := f.fetchPost(ctx, e.EmbedRecordWithMedia.Record.Uri, depth+1); err == nil {
				out.Record = &quoted
			}
		}
	default:
		return nil, nil
	}

	return out, nil
}

// blobURL builds a getBlob URL for a CID-addressed blob reference
// (grounded on watzon-lining/post/embed.go's image.Image.Ref.String()
// usage). blob may be nil when no image/thumb was set on that slot.
func (f *PostFetcher) blobURL(blob *lexutil.LexBlob) string {
	if blob == nil {
		return ""
	}
	return fmt.Sprintf("%s/xrpc/com.atproto.sync.getBlob?cid=%s", f.serviceURL, blob.Ref.String())
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

// parseTimestamp accepts ISO-8601 both with and without fractional
// seconds (spec.md §4.5), returning the zero time on a parse failure
// rather than erroring — a malformed timestamp from upstream shouldn't
// fail the whole fetch.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
