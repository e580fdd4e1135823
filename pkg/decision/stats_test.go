package decision

import (
	"strings"
	"testing"
)

func TestStats_TotalRuleMatches(t *testing.T) {
	tests := []struct {
		name    string
		matches map[string]int
		want    int
	}{
		{"none", nil, 0},
		{"single_rule", map[string]int{"page-footer": 3}, 3},
		{"several_rules", map[string]int{"page-footer": 2, "classification": 1, "header": 4}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStats()
			for rule, count := range tt.matches {
				s.RecordRuleMatch(rule, count)
			}
			if got := s.TotalRuleMatches(); got != tt.want {
				t.Errorf("TotalRuleMatches() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStats_String(t *testing.T) {
	s := NewStats()
	s.InputBytes = 200
	s.OutputBytes = 50
	s.RecordRuleMatch("page-footer", 2)
	s.RecordRuleMatch("classification", 1)
	s.Paragraphs = 5
	s.DecisionParagraphs = 2

	got := s.String()
	for _, want := range []string{
		"Size: 200 -> 50 bytes (75.0% reduction)\n",
		"Noise removed (3): classification=1, page-footer=2\n",
		"Paragraphs: 5 segmented, 2 kept\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Signature block") {
		t.Errorf("String() reported a signature block that was not found:\n%s", got)
	}

	if strings.Contains(NewStats().String(), "Noise removed") {
		t.Error("String() should omit the noise line when no rule matched")
	}
}
