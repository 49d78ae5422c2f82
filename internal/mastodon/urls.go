package mastodon

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ProfileURL builds the canonical Bluesky profile URL an Account's "url"
// field points at.
func ProfileURL(handle string) string {
	return "https://bsky.app/profile/" + handle
}

// GravatarIdenticon builds a deterministic Gravatar identicon URL for
// handle, used as an Account's avatar fallback when the upstream profile
// carries no avatar image (spec.md §4.5).
func GravatarIdenticon(handle string) string {
	sum := md5.Sum([]byte(handle + "@gravatar.com"))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// StatusURL builds the canonical Bluesky post URL for a Status's "url"
// field, given the author's handle and the post's record key (the final
// AT-URI path segment).
func StatusURL(handle, rkey string) string {
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
}
