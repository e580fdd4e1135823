package output

import "github.com/jmylchreest/notadecision/pkg/decision"

// Record is one extraction result as written by the structured formats.
type Record struct {
	Source   string             `json:"source" yaml:"source"`
	Content  string             `json:"content" yaml:"content"`
	Anchored bool               `json:"anchored" yaml:"anchored"`
	Fallback bool               `json:"fallback" yaml:"fallback"`
	Reason   string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	Warnings []decision.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats    *decision.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// NewRecord converts a pipeline result. Stats are included only when
// withStats is set.
func NewRecord(source string, r *decision.Result, withStats bool) Record {
	rec := Record{
		Source:   source,
		Content:  r.Content,
		Anchored: r.Anchored,
		Fallback: r.Fallback,
		Warnings: r.Warnings,
	}
	if r.Reason != nil {
		rec.Reason = r.Reason.Error()
	}
	if withStats {
		rec.Stats = r.Stats
	}
	return rec
}
