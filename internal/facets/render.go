// Package facets renders Bluesky's byte-indexed rich-text facets into
// sanitized Mastodon-compatible HTML, per spec.md §4.4.
package facets

import (
	"fmt"
	"sort"
	"strings"
)

// ByteSlice is a byte-offset range into the UTF-8 text a facet annotates
// (spec.md §3).
type ByteSlice struct {
	Start int
	End   int
}

// FeatureKind discriminates a Feature's payload.
type FeatureKind int

const (
	FeatureLink FeatureKind = iota
	FeatureMention
	FeatureTag
)

// Feature is one of Link(uri), Mention(did), Tag(name) (spec.md §3). Only
// the field matching Kind is meaningful.
type Feature struct {
	Kind FeatureKind
	URI  string // FeatureLink
	DID  string // FeatureMention
	Name string // FeatureTag
}

// Facet annotates [Start,End) of the rendered text with one or more
// Features; only the first feature is rendered (spec.md §4.4 step 2).
type Facet struct {
	ByteSlice
	Features []Feature
}

// HandleResolver resolves a mention facet's DID to a displayable handle.
// The facet body text is used as a fallback per spec.md §4.4 ("using the
// body text as the handle").
type HandleResolver func(did string) (handle string, ok bool)

// Render converts text plus an optional set of facets into a single HTML
// paragraph, following the algorithm in spec.md §4.4.
func Render(text string, facets []Facet, resolveHandle HandleResolver) string {
	if len(facets) == 0 {
		return "<p>" + renderPlain(text) + "</p>"
	}

	sorted := make([]Facet, 0, len(facets))
	for _, f := range facets {
		if f.Start < 0 || f.End > len(text) || f.Start > f.End {
			continue // out-of-range byte slices are dropped silently
		}
		sorted = append(sorted, f)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.WriteString("<p>")

	cursor := 0
	for _, f := range sorted {
		if f.Start < cursor {
			// Overlapping facets render in start order and may nest
			// visually; this is documented behavior, not a bug
			// (spec.md §4.4 edge cases).
		}
		if f.Start > cursor {
			b.WriteString(renderPlain(text[cursor:f.Start]))
		}
		b.WriteString(renderFeature(text[f.Start:f.End], f.Features, resolveHandle))
		if f.End > cursor {
			cursor = f.End
		}
	}
	if cursor < len(text) {
		b.WriteString(renderPlain(text[cursor:]))
	}

	b.WriteString("</p>")
	return b.String()
}

func renderFeature(body string, features []Feature, resolveHandle HandleResolver) string {
	if len(features) == 0 {
		return renderPlain(body)
	}

	switch f := features[0]; f.Kind {
	case FeatureLink:
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="nofollow noopener noreferrer">%s</a>`,
			Escape(f.URI), Escape(body))
	case FeatureMention:
		handle := strings.TrimPrefix(body, "@")
		if resolveHandle != nil {
			if resolved, ok := resolveHandle(f.DID); ok {
				handle = resolved
			}
		}
		return fmt.Sprintf(`<span class="h-card"><a href="%s" class="u-url mention">@%s</a></span>`,
			Escape(ProfileURL(handle)), Escape(handle))
	case FeatureTag:
		return fmt.Sprintf(`<a href="%s" class="mention hashtag">#%s</a>`,
			Escape(HashtagURL(f.Name)), Escape(f.Name))
	default:
		return Escape(body)
	}
}

// ProfileURL builds the canonical Bluesky profile URL for handle.
func ProfileURL(handle string) string {
	return "https://bsky.app/profile/" + handle
}

// HashtagURL builds the canonical Bluesky hashtag search URL for name.
func HashtagURL(name string) string {
	return "https://bsky.app/hashtag/" + name
}
