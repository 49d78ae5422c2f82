// Package atmodel models the slice of Bluesky (AT Protocol) record and
// view shapes the translators (C5) consume. Field layout follows an
// existing Bluesky-post fetcher's response structs (post, record, embed,
// embed-record) rather than being guessed from scratch.
package atmodel

import (
	"time"

	"github.com/jefflewis/archaeopteryx/internal/facets"
)

// Profile is app.bsky.actor.defs#profileView(Detailed) trimmed to the
// fields the Profile→Account translator needs.
type Profile struct {
	DID            string
	Handle         string
	DisplayName    string
	Description    string
	Avatar         string
	Banner         string
	FollowersCount int
	FollowsCount   int
	PostsCount     int
	IndexedAt      time.Time
}

// EmbedImage is one image of an app.bsky.embed.images view.
type EmbedImage struct {
	Fullsize string
	Thumb    string
	Alt      string
}

// EmbedExternal is an app.bsky.embed.external view (a link card).
type EmbedExternal struct {
	URI         string
	Title       string
	Description string
	Thumb       string
}

// Embed holds the media of a post's embed (app.bsky.embed.images /
// .external / .record / .recordWithMedia). Images, External and Record
// are each set by the matching embed kind; a recordWithMedia embed sets
// both Images and Record.
type Embed struct {
	Images   []EmbedImage
	External *EmbedExternal
	Record   *Post // quoted post; translate.Status renders one level of it
}

// ReplyRef mirrors app.bsky.feed.post#replyRef, trimmed to what the
// translator needs to set in_reply_to_id / in_reply_to_account_id.
type ReplyRef struct {
	ParentURI string
	ParentDID string
}

// Post is app.bsky.feed.defs#postView, trimmed to the fields the
// Post→Status translator needs. Facets use the shared facets.Facet type
// so C5 and C4 speak the same byte-indexed rich-text shape.
type Post struct {
	URI         string
	CID         string
	Author      Profile
	Text        string
	Facets      []facets.Facet
	Reply       *ReplyRef
	Embed       *Embed
	CreatedAt   time.Time
	IndexedAt   time.Time
	ReplyCount  int
	RepostCount int
	LikeCount   int
}

// NotificationReason is app.bsky.notification.listNotifications#reason.
type NotificationReason string

const (
	ReasonLike    NotificationReason = "like"
	ReasonRepost  NotificationReason = "repost"
	ReasonFollow  NotificationReason = "follow"
	ReasonMention NotificationReason = "mention"
	ReasonReply   NotificationReason = "reply"
	ReasonQuote   NotificationReason = "quote"
)

// Notification is app.bsky.notification.listNotifications#notification,
// trimmed to what the Notification→Notification translator needs.
// SubjectURI is the AT-URI of the post the notification refers to (the
// liked/reposted/replied-to/quoted post); empty for follow notifications.
type Notification struct {
	URI        string
	Reason     NotificationReason
	Author     Profile
	SubjectURI string
	IndexedAt  time.Time
	IsRead     bool
}
