package decision

import (
	"fmt"
	"regexp"
	"strings"
)

// SignatureScanStart is the first paragraph index considered as a signature
// boundary. Paragraph 0 is the opening decision statement ("De Vlaamse
// Regering beslist:") and is never treated as the start of a signature block,
// even when it matches the signature pattern.
const SignatureScanStart = 1

// DefaultSignatureArticles are the optional articles that may precede a
// signature phrase.
var DefaultSignatureArticles = []string{"de", "het"}

// DefaultSignaturePhrases are regular expression fragments for the titles
// that open a ministerial signature block.
var DefaultSignaturePhrases = []string{
	`minister-president`,
	`viceminister-president`,
	`vlaamse?` + space + `+minister`,
}

// SignatureDetector finds the first paragraph of the signature block.
type SignatureDetector struct {
	pattern *regexp.Regexp
}

// NewSignatureDetector builds a case-insensitive detector matching paragraphs
// that start with an optional article followed by one of the phrases.
// Phrases must not start with a list number, so "2. de Vlaamse minister ..."
// inside the decision text is not mistaken for a signature.
func NewSignatureDetector(articles, phrases []string) (*SignatureDetector, error) {
	if len(phrases) == 0 {
		return nil, fmt.Errorf("signature detector: no phrases configured")
	}
	quoted := make([]string, len(articles))
	for i, a := range articles {
		quoted[i] = regexp.QuoteMeta(a)
	}
	expr := `(?i)^`
	if len(quoted) > 0 {
		expr += `(?:(?:` + strings.Join(quoted, "|") + `)\b)?`
	}
	expr += space + `*(?:` + strings.Join(phrases, "|") + `)`

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("signature detector: %w", err)
	}
	return &SignatureDetector{pattern: re}, nil
}

// Matches reports whether the trimmed paragraph opens a signature block.
func (d *SignatureDetector) Matches(paragraph string) bool {
	return d.pattern.MatchString(strings.TrimSpace(paragraph))
}

// Detect returns the index of the first signature paragraph at or after
// SignatureScanStart. Co-signing ministers each add a signature paragraph
// further down; only the first one matters since everything from it onward
// is dropped.
func (d *SignatureDetector) Detect(paragraphs []string) (int, bool) {
	for i := SignatureScanStart; i < len(paragraphs); i++ {
		if d.Matches(paragraphs[i]) {
			return i, true
		}
	}
	return -1, false
}
