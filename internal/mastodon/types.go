// Package mastodon defines the wire-shaped Mastodon v1/v2 domain objects
// the gateway emulates, per spec.md §3/§6. Fields are snake_case on the
// wire; nullable fields serialize as JSON null rather than being omitted,
// for Mastodon client compatibility (spec.md §6).
package mastodon

import "time"

// Account is api/v1/accounts' Account entity.
type Account struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Acct           string          `json:"acct"`
	DisplayName    string          `json:"display_name"`
	Locked         bool            `json:"locked"`
	Bot            bool            `json:"bot"`
	CreatedAt      time.Time       `json:"created_at"`
	Note           string          `json:"note"`
	URL            string          `json:"url"`
	Avatar         string          `json:"avatar"`
	AvatarStatic   string          `json:"avatar_static"`
	Header         *string         `json:"header"`
	HeaderStatic   *string         `json:"header_static"`
	FollowersCount int             `json:"followers_count"`
	FollowingCount int             `json:"following_count"`
	StatusesCount  int             `json:"statuses_count"`
	Fields         []AccountField  `json:"fields"`
	Emojis         []CustomEmoji   `json:"emojis"`
}

// AccountField is a profile metadata field (Mastodon "fields" UI) — never
// populated by this gateway (spec.md §6 Non-goals), kept as a real type so
// Account round-trips against the full wire schema.
type AccountField struct {
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	VerifiedAt *time.Time `json:"verified_at"`
}

// Relationship is api/v1/accounts/:id/follow's Relationship entity.
type Relationship struct {
	ID                 string `json:"id"`
	Following          bool   `json:"following"`
	ShowingReblogs     bool   `json:"showing_reblogs"`
	Notifying          bool   `json:"notifying"`
	FollowedBy         bool   `json:"followed_by"`
	Blocking           bool   `json:"blocking"`
	BlockedBy          bool   `json:"blocked_by"`
	Muting             bool   `json:"muting"`
	MutingNotifications bool  `json:"muting_notifications"`
	Requested          bool   `json:"requested"`
	DomainBlocking     bool   `json:"domain_blocking"`
	Endorsed           bool   `json:"endorsed"`
}

// Tag is a hashtag reference attached to a Status.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Mention is an @-mention reference attached to a Status.
type Mention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

// MediaAttachment is a Status's media entity (spec.md §4.5: one per
// embedded image).
type MediaAttachment struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"` // "image" (only kind this gateway produces)
	URL         string  `json:"url"`
	PreviewURL  string  `json:"preview_url"`
	RemoteURL   *string `json:"remote_url"`
	Description *string `json:"description"`
}

// Card is a Status's link-preview entity (spec.md §4.5: one per external
// embed).
type Card struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // "link" (only kind this gateway produces)
	Image       *string `json:"image"`
}

// CustomEmoji is a custom-emoji entity — never populated by this gateway
// (spec.md §6 Non-goals).
type CustomEmoji struct {
	Shortcode       string `json:"shortcode"`
	URL             string `json:"url"`
	StaticURL       string `json:"static_url"`
	VisibleInPicker bool   `json:"visible_in_picker"`
}

// PollOption is one option of a Poll — never populated (spec.md §6
// Non-goals: polls).
type PollOption struct {
	Title      string `json:"title"`
	VotesCount *int   `json:"votes_count"`
}

// Poll is a Status's poll entity — never populated (spec.md §6 Non-goals).
type Poll struct {
	ID         string       `json:"id"`
	ExpiresAt  *time.Time   `json:"expires_at"`
	Expired    bool         `json:"expired"`
	Multiple   bool         `json:"multiple"`
	VotesCount int          `json:"votes_count"`
	Options    []PollOption `json:"options"`
}

// StatusEdit represents one revision of an edited status — never
// populated (spec.md §6 Non-goals: post edits).
type StatusEdit struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter is a user-defined content filter — never populated (spec.md §6
// Non-goals: filters).
type Filter struct {
	ID       string   `json:"id"`
	Phrase   string   `json:"phrase"`
	Context  []string `json:"context"`
	WholeWord bool    `json:"whole_word"`
}

// Status is api/v1/statuses' Status entity.
type Status struct {
	ID                     string            `json:"id"`
	URI                    string            `json:"uri"`
	CreatedAt              time.Time         `json:"created_at"`
	EditedAt               *time.Time        `json:"edited_at"`
	Content                string            `json:"content"`
	Visibility             string            `json:"visibility"`
	Sensitive              bool              `json:"sensitive"`
	SpoilerText            string            `json:"spoiler_text"`
	Account                Account           `json:"account"`
	MediaAttachments       []MediaAttachment `json:"media_attachments"`
	Mentions               []Mention         `json:"mentions"`
	Tags                   []Tag             `json:"tags"`
	Emojis                 []CustomEmoji     `json:"emojis"`
	RepliesCount           int               `json:"replies_count"`
	ReblogsCount           int               `json:"reblogs_count"`
	FavouritesCount        int               `json:"favourites_count"`
	URL                    *string           `json:"url"`
	InReplyToID            *string           `json:"in_reply_to_id"`
	InReplyToAccountID     *string           `json:"in_reply_to_account_id"`
	Reblog                 *Status           `json:"reblog"`
	Poll                   *Poll             `json:"poll"`
	Card                   *Card             `json:"card"`
	Language               *string           `json:"language"`
	Pinned                 *bool             `json:"pinned"`
}

// Notification is api/v1/notifications' Notification entity.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Account   Account   `json:"account"`
	Status    *Status   `json:"status"`
}

// Instance is api/v1/instance and api/v2/instance's Instance entity,
// trimmed to the fields spec.md §6 names.
type Instance struct {
	URI             string          `json:"uri"`
	Title           string          `json:"title"`
	ShortDescription string         `json:"short_description"`
	Description     string          `json:"description"`
	Version         string          `json:"version"`
	Languages       []string        `json:"languages"`
	Configuration   InstanceConfig  `json:"configuration"`
}

// InstanceConfig carries the statuses-related limits spec.md §6 requires
// (max_characters=300, max_media_attachments=4).
type InstanceConfig struct {
	Statuses StatusesConfig `json:"statuses"`
}

type StatusesConfig struct {
	MaxCharacters       int `json:"max_characters"`
	MaxMediaAttachments int `json:"max_media_attachments"`
}

// List is api/v1/lists' List entity — never populated (no list creation
// is in scope), defined so the type round-trips.
type List struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SearchResults is /api/v2/search's response shape. Hashtag search always
// returns empty per spec.md §6 Non-goals.
type SearchResults struct {
	Accounts []Account `json:"accounts"`
	Statuses []Status  `json:"statuses"`
	Hashtags []Tag     `json:"hashtags"`
}
