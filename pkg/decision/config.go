package decision

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Mode selects the output rendering.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeSimple     Mode = "simple"
)

// RuleConfig describes a noise rule in a rules file.
type RuleConfig struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Pattern     string `json:"pattern" yaml:"pattern" validate:"required"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Config defines the heuristics used by the pipeline.
type Config struct {
	// Anchor is the literal token that starts the decision section.
	Anchor string `json:"anchor" yaml:"anchor" validate:"required"`

	// NoiseRules are applied in order after trimming the anchored text.
	NoiseRules []RuleConfig `json:"noise_rules" yaml:"noise_rules" validate:"dive"`

	// SignatureArticles may precede a signature phrase ("de", "het").
	SignatureArticles []string `json:"signature_articles" yaml:"signature_articles" validate:"dive,required"`

	// SignaturePhrases are regular expression fragments opening a signature block.
	SignaturePhrases []string `json:"signature_phrases" yaml:"signature_phrases" validate:"min=1,dive,required"`

	// AttachmentPrefixes mark attachment announcement paragraphs.
	AttachmentPrefixes []string `json:"attachment_prefixes" yaml:"attachment_prefixes" validate:"min=1,dive,required"`

	// Mode selects the formatter: structured (default) or simple.
	Mode Mode `json:"mode" yaml:"mode" validate:"omitempty,oneof=structured simple"`
}

// DefaultConfig returns the heuristics tuned for Flemish government Notas.
func DefaultConfig() *Config {
	rules := DefaultNoiseRules()
	ruleConfigs := make([]RuleConfig, len(rules))
	for i, r := range rules {
		ruleConfigs[i] = RuleConfig{Name: r.name, Pattern: r.Pattern(), Replacement: r.replacement}
	}
	return &Config{
		Anchor:             DefaultAnchor,
		NoiseRules:         ruleConfigs,
		SignatureArticles:  append([]string(nil), DefaultSignatureArticles...),
		SignaturePhrases:   append([]string(nil), DefaultSignaturePhrases...),
		AttachmentPrefixes: append([]string(nil), DefaultAttachmentPrefixes...),
		Mode:               ModeStructured,
	}
}

// PresetSimple returns the default heuristics with the simple formatter.
func PresetSimple() *Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeSimple
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid decision config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML rules file and merges it over DefaultConfig.
// Noise rules from the file are appended after the built-in rules; non-empty
// lists for signatures and attachments replace the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig merges YAML rules data over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	cfg := DefaultConfig()
	if file.Anchor != "" {
		cfg.Anchor = file.Anchor
	}
	cfg.NoiseRules = append(cfg.NoiseRules, file.NoiseRules...)
	if len(file.SignatureArticles) > 0 {
		cfg.SignatureArticles = file.SignatureArticles
	}
	if len(file.SignaturePhrases) > 0 {
		cfg.SignaturePhrases = file.SignaturePhrases
	}
	if len(file.AttachmentPrefixes) > 0 {
		cfg.AttachmentPrefixes = file.AttachmentPrefixes
	}
	if file.Mode != "" {
		cfg.Mode = file.Mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
