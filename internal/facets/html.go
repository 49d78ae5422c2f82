package facets

import (
	"regexp"
	"strings"
)

// bareURLPattern matches bare URLs in plain text for auto-linking
// (spec.md §4.4 step 1): http(s):// or www. prefixed runs of
// non-whitespace, non-quote characters.
var bareURLPattern = regexp.MustCompile(`(https?://|www\.)[^\s<>"']+`)

// Escape maps & < > " ' to their HTML entities.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderPlain escapes s, auto-links bare URLs, and converts newlines to
// <br> (spec.md §4.4 step 1, and the plain-text runs between facets in
// step 2).
func renderPlain(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range bareURLPattern.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		b.WriteString(escapeAndBreak(s[last:start]))

		url := s[start:end]
		href := url
		if strings.HasPrefix(href, "www.") {
			href = "https://" + href
		}
		b.WriteString(`<a href="`)
		b.WriteString(Escape(href))
		b.WriteString(`" target="_blank" rel="nofollow noopener noreferrer">`)
		b.WriteString(Escape(url))
		b.WriteString(`</a>`)

		last = end
	}
	b.WriteString(escapeAndBreak(s[last:]))
	return b.String()
}

func escapeAndBreak(s string) string {
	return strings.ReplaceAll(Escape(s), "\n", "<br>")
}
