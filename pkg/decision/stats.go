package decision

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures metrics about what the pipeline did.
type Stats struct {
	// Size metrics
	InputBytes    int `json:"input_bytes" yaml:"input_bytes"`
	AnchoredBytes int `json:"anchored_bytes" yaml:"anchored_bytes"`
	OutputBytes   int `json:"output_bytes" yaml:"output_bytes"`

	// Noise rule matches
	RuleMatches map[string]int `json:"rule_matches" yaml:"rule_matches"` // rule -> count

	// Paragraph counts
	Paragraphs         int `json:"paragraphs" yaml:"paragraphs"`
	SignatureIndex     int `json:"signature_index" yaml:"signature_index"` // -1 when no signature block was found
	AttachmentsRemoved int `json:"attachments_removed" yaml:"attachments_removed"`
	DecisionParagraphs int `json:"decision_paragraphs" yaml:"decision_paragraphs"`

	// Timing
	CleanDuration time.Duration `json:"clean_duration_ns" yaml:"clean_duration"`
	TotalDuration time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		RuleMatches:    make(map[string]int),
		SignatureIndex: -1,
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalRuleMatches returns the sum of all noise rule matches.
func (s *Stats) TotalRuleMatches() int {
	total := 0
	for _, count := range s.RuleMatches {
		total += count
	}
	return total
}

// RecordRuleMatch records that a noise rule matched count times.
func (s *Stats) RecordRuleMatch(rule string, count int) {
	s.RuleMatches[rule] += count
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))

	if len(s.RuleMatches) > 0 {
		sb.WriteString(fmt.Sprintf("Noise removed (%d): ", s.TotalRuleMatches()))
		names := make([]string, 0, len(s.RuleMatches))
		for name := range s.RuleMatches {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, s.RuleMatches[name]))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Paragraphs: %d segmented, %d kept\n", s.Paragraphs, s.DecisionParagraphs))

	if s.SignatureIndex >= 0 {
		sb.WriteString(fmt.Sprintf("Signature block at paragraph %d\n", s.SignatureIndex))
	}

	if s.AttachmentsRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attachment paragraphs removed: %d\n", s.AttachmentsRemoved))
	}

	sb.WriteString(fmt.Sprintf("Timing: clean=%v, total=%v\n",
		s.CleanDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during extraction.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "anchor", "clean"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Rule, anchor or error that caused the issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of an extraction.
type Result struct {
	// Content is the decision markup, or the anchored text when Fallback is set.
	Content string `json:"content" yaml:"content"`

	// Anchored reports whether the anchor token was found.
	Anchored bool `json:"anchored" yaml:"anchored"`

	// Fallback reports that cleaning failed or produced nothing and Content
	// holds the unformatted anchored text.
	Fallback bool `json:"fallback" yaml:"fallback"`

	// Reason is the cleaning failure behind a fallback.
	Reason error `json:"-" yaml:"-"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
