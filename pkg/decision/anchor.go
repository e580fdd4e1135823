package decision

import "strings"

// DefaultAnchor marks the start of the decision section in a Nota.
const DefaultAnchor = "VOORSTEL VAN BESLISSING"

// Locate returns the text following the first occurrence of anchor.
// When the anchor is absent (or empty) the raw text is returned unchanged
// and found is false; a missing anchor is never an error.
func Locate(raw, anchor string) (anchored string, found bool) {
	if anchor == "" {
		return raw, false
	}
	i := strings.Index(raw, anchor)
	if i < 0 {
		return raw, false
	}
	return raw[i+len(anchor):], true
}
