package atmodel

import "strings"

// SplitATURI decomposes an at://{did}/{collection}/{rkey} URI (spec.md
// §GLOSSARY) into its three parts. ok is false if uri doesn't have the
// at:// scheme and exactly three path segments.
func SplitATURI(uri string) (did, collection, rkey string, ok bool) {
	rest, found := strings.CutPrefix(uri, "at://")
	if !found {
		return "", "", "", false
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
