package decision

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DefaultAttachmentPrefixes match attachment announcements. Only the prefix
// is matched so "Bijlage", "Bijlagen", "Bijlages" and "Bijlage:" all qualify.
var DefaultAttachmentPrefixes = []string{"bijlage"}

// AttachmentFilter removes paragraphs that merely announce attachments.
type AttachmentFilter struct {
	pattern *regexp.Regexp
}

// NewAttachmentFilter builds a case-insensitive prefix filter.
func NewAttachmentFilter(prefixes []string) (*AttachmentFilter, error) {
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("attachment filter: no prefixes configured")
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile(`(?i)^(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("attachment filter: %w", err)
	}
	return &AttachmentFilter{pattern: re}, nil
}

// Matches reports whether the trimmed paragraph is an attachment announcement.
func (f *AttachmentFilter) Matches(paragraph string) bool {
	return f.pattern.MatchString(strings.TrimSpace(paragraph))
}

// Filter scans from the last paragraph to the first and drops every
// attachment paragraph. It returns a new slice in the original order and the
// number of paragraphs removed; the input is not modified.
func (f *AttachmentFilter) Filter(paragraphs []string) ([]string, int) {
	kept := make([]string, 0, len(paragraphs))
	removed := 0
	for i := len(paragraphs) - 1; i >= 0; i-- {
		if f.Matches(paragraphs[i]) {
			removed++
			continue
		}
		kept = append(kept, paragraphs[i])
	}
	slices.Reverse(kept)
	return kept, removed
}
