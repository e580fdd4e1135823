// Package decision extracts the "voorstel van beslissing" section from the
// text of a Nota and renders it as minimal paragraph markup.
//
// The pipeline is purely lexical. It anchors on the section token, strips
// page footers, classification codes and column-wrap artifacts, splits the
// rest into paragraphs, cuts everything from the first signature paragraph
// onward, drops attachment announcements and formats what is left. When
// cleaning fails or produces nothing, the anchored text is returned as is.
package decision

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/notadecision/internal/logger"
)

var (
	// ErrEmptyResult indicates cleaning succeeded but left no decision text.
	ErrEmptyResult = errors.New("cleaning produced no decision text")
	// ErrCleaningPanic indicates a stage panicked on the input.
	ErrCleaningPanic = errors.New("cleaning stage panicked")
)

// Outcome is the result of the guarded cleaning unit: either Text or Err.
type Outcome struct {
	Text string
	Err  error
}

// OK reports whether cleaning produced usable text.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Pipeline runs the extraction stages. It is immutable after construction
// and safe for concurrent use.
type Pipeline struct {
	anchor      string
	noise       *NoiseStripper
	signatures  *SignatureDetector
	attachments *AttachmentFilter
	formatter   Formatter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFormatter overrides the formatter selected by the config mode.
func WithFormatter(f Formatter) Option {
	return func(p *Pipeline) {
		p.formatter = f
	}
}

// New builds a pipeline from cfg. If cfg is nil, DefaultConfig() is used.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(cfg.NoiseRules))
	for _, rc := range cfg.NoiseRules {
		r, err := NewRule(rc.Name, rc.Pattern, rc.Replacement)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	signatures, err := NewSignatureDetector(cfg.SignatureArticles, cfg.SignaturePhrases)
	if err != nil {
		return nil, err
	}
	attachments, err := NewAttachmentFilter(cfg.AttachmentPrefixes)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		anchor:      cfg.Anchor,
		noise:       NewNoiseStripper(rules...),
		signatures:  signatures,
		attachments: attachments,
		formatter:   formatterFor(cfg.Mode),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// MustNew is like New but panics on an invalid config.
func MustNew(cfg *Config, opts ...Option) *Pipeline {
	p, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func formatterFor(mode Mode) Formatter {
	if mode == ModeSimple {
		return SimpleFormatter{}
	}
	return StructuredFormatter{}
}

// Name returns the cleaner name for logging.
func (p *Pipeline) Name() string {
	return "decision(" + p.formatter.Name() + ")"
}

// Clean returns the decision content for raw document text.
// It implements the cleaner.Cleaner interface and never returns an error.
func (p *Pipeline) Clean(raw string) (string, error) {
	return p.Extract(raw).Content, nil
}

// Extract anchors raw, runs the guarded cleaning unit and applies the
// fallback policy: on failure or empty output the anchored text is returned
// unformatted.
func (p *Pipeline) Extract(raw string) *Result {
	start := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(raw)

	anchored, found := Locate(raw, p.anchor)
	result.Anchored = found
	result.Stats.AnchoredBytes = len(anchored)
	if !found {
		result.AddWarning("anchor", "anchor not found, using full text", p.anchor)
	}

	cleanStart := time.Now()
	outcome := p.Run(anchored, result.Stats)
	result.Stats.CleanDuration = time.Since(cleanStart)

	if outcome.OK() {
		result.Content = outcome.Text
	} else {
		result.Content = anchored
		result.Fallback = true
		result.Reason = outcome.Err
		result.AddWarning("clean", "cleaning failed, returning anchored text", outcome.Err.Error())
		logger.Warn("decision cleaning fell back to anchored text", "reason", outcome.Err)
		logger.Debug("text that could not be cleaned", "text", anchored)
	}

	result.Stats.OutputBytes = len(result.Content)
	result.Stats.TotalDuration = time.Since(start)
	return result
}

// Run executes noise stripping, segmentation, signature detection,
// attachment filtering and formatting on anchored text as one unit. Panics
// and errors from any stage are returned in the Outcome, never propagated.
// stats may be nil.
func (p *Pipeline) Run(anchored string, stats *Stats) (out Outcome) {
	if stats == nil {
		stats = NewStats()
	}
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("%w: %v", ErrCleaningPanic, r)}
		}
	}()

	text, err := p.noise.Strip(anchored, stats)
	if err != nil {
		return Outcome{Err: fmt.Errorf("strip noise: %w", err)}
	}

	paragraphs := Segment(text)
	stats.Paragraphs = len(paragraphs)

	decision := paragraphs
	if boundary, ok := p.signatures.Detect(paragraphs); ok {
		decision = paragraphs[:boundary]
		stats.SignatureIndex = boundary
	}

	kept, removed := p.attachments.Filter(decision)
	stats.AttachmentsRemoved = removed
	stats.DecisionParagraphs = len(kept)
	if allBlank(kept) {
		return Outcome{Err: ErrEmptyResult}
	}

	html, err := p.formatter.Format(kept)
	if err != nil {
		return Outcome{Err: fmt.Errorf("format: %w", err)}
	}
	if strings.TrimSpace(html) == "" {
		return Outcome{Err: ErrEmptyResult}
	}
	return Outcome{Text: html}
}

func allBlank(paragraphs []string) bool {
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
