package decision

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmylchreest/notadecision/pkg/cleaner"
)

// Rule is a named pattern replacement applied to the anchored text.
// It implements the cleaner.Cleaner interface.
type Rule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewRule compiles pattern into a rule. The replacement may reference
// capture groups using regexp.Expand syntax (${1}).
func NewRule(name, pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return Rule{name: name, pattern: re, replacement: replacement}, nil
}

// MustRule is like NewRule but panics if the pattern does not compile.
func MustRule(name, pattern, replacement string) Rule {
	r, err := NewRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule name.
func (r Rule) Name() string {
	return r.name
}

// Pattern returns the source of the rule's regular expression.
func (r Rule) Pattern() string {
	return r.pattern.String()
}

// Clean replaces every match of the rule's pattern.
func (r Rule) Clean(text string) (string, error) {
	return r.pattern.ReplaceAllString(text, r.replacement), nil
}

// Count returns the number of non-overlapping matches in text.
func (r Rule) Count(text string) int {
	return len(r.pattern.FindAllStringIndex(text, -1))
}

// Default noise rules, in application order. The column-wrap rule runs last
// because the PDF layout uses slash runs as a visual paragraph separator.
var (
	ClassificationRule = MustRule("classification", `Classificatie:`+space+`+Klasse`+space+`+[0-9]+`, "")
	PageFooterRule     = MustRule("page-footer", `Pagina`+space+`+[0-9]+`+space+`+van`+space+`+[0-9]+`, "")
	ColumnWrapRule     = MustRule("column-wrap", `//+`, "\n")
)

// DefaultNoiseRules returns the built-in noise rules in order.
func DefaultNoiseRules() []Rule {
	return []Rule{ClassificationRule, PageFooterRule, ColumnWrapRule}
}

// NoiseStripper removes administrative noise using an ordered rule set.
type NoiseStripper struct {
	rules []Rule
}

// NewNoiseStripper creates a stripper that applies rules in the order given.
func NewNoiseStripper(rules ...Rule) *NoiseStripper {
	return &NoiseStripper{rules: rules}
}

// Rules returns a copy of the configured rules.
func (n *NoiseStripper) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	copy(out, n.rules)
	return out
}

// Name returns the stripper name.
func (n *NoiseStripper) Name() string {
	return "noise"
}

// Clean strips noise without recording stats.
func (n *NoiseStripper) Clean(text string) (string, error) {
	return n.Strip(text, nil)
}

// Strip trims the text and runs every rule over it, recording per-rule match
// counts into stats when it is non-nil.
func (n *NoiseStripper) Strip(text string, stats *Stats) (string, error) {
	stages := make([]cleaner.Cleaner, len(n.rules))
	for i, r := range n.rules {
		stages[i] = recordingRule{rule: r, stats: stats}
	}
	return cleaner.NewChain(stages...).Clean(strings.TrimSpace(text))
}

type recordingRule struct {
	rule  Rule
	stats *Stats
}

func (r recordingRule) Name() string {
	return r.rule.Name()
}

func (r recordingRule) Clean(text string) (string, error) {
	if r.stats != nil {
		r.stats.RecordRuleMatch(r.rule.Name(), r.rule.Count(text))
	}
	return r.rule.Clean(text)
}
