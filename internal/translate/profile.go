package translate

import (
	"context"
	"strings"

	"github.com/jefflewis/archaeopteryx/internal/atmodel"
	"github.com/jefflewis/archaeopteryx/internal/facets"
	"github.com/jefflewis/archaeopteryx/internal/mastodon"
)

// Profile translates a Bluesky profile view into a Mastodon Account
// (spec.md §4.5).
func Profile(ctx context.Context, ids IDMapper, p atmodel.Profile) (mastodon.Account, error) {
	id, err := ids.SnowflakeForDID(ctx, p.DID)
	if err != nil {
		return mastodon.Account{}, err
	}

	displayName := p.DisplayName
	if displayName == "" {
		displayName = p.Handle
	}

	avatar := p.Avatar
	if avatar == "" {
		avatar = mastodon.GravatarIdenticon(p.Handle)
	}

	acct := mastodon.Account{
		ID:             idString(id),
		Username:       usernameFromHandle(p.Handle),
		Acct:           p.Handle,
		DisplayName:    displayName,
		Locked:         false,
		Bot:            false,
		CreatedAt:      p.IndexedAt,
		Note:           facets.Render(p.Description, nil, nil),
		URL:            mastodon.ProfileURL(p.Handle),
		Avatar:         avatar,
		AvatarStatic:   avatar,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowsCount,
		StatusesCount:  p.PostsCount,
		Fields:         []mastodon.AccountField{},
		Emojis:         []mastodon.CustomEmoji{},
	}
	if p.Banner != "" {
		acct.Header = &p.Banner
		acct.HeaderStatic = &p.Banner
	}
	return acct, nil
}

// usernameFromHandle returns the handle's first label (spec.md §4.5:
// "handle prefix up to first .").
func usernameFromHandle(handle string) string {
	if i := strings.IndexByte(handle, '.'); i >= 0 {
		return handle[:i]
	}
	return handle
}
