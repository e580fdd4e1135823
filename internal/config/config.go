// Package config holds the runtime settings of the service and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notadecision/internal/pdftext"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

// Keys used in the config file, flags and environment.
const (
	KeyAddr           = "addr"
	KeySPARQLEndpoint = "sparql_endpoint"
	KeyShareRoot      = "share_root"
	KeyMaxFileSize    = "max_file_size"
	KeyRequestTimeout = "request_timeout"
	KeyRulesFile      = "rules_file"
	KeyMode           = "mode"
	KeyDebug          = "debug"
	KeyQuiet          = "quiet"
	KeyLogJSON        = "log_json"
)

// EnvPrefix prefixes environment overrides, e.g. NOTADECISION_ADDR.
const EnvPrefix = "NOTADECISION"

// Config is the resolved configuration.
type Config struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	SPARQLEndpoint string        `mapstructure:"sparql_endpoint" validate:"required,url"`
	ShareRoot      string        `mapstructure:"share_root" validate:"required"`
	MaxFileSize    int64         `mapstructure:"-" validate:"min=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=0"`
	RulesFile      string        `mapstructure:"rules_file"`
	Mode           decision.Mode `mapstructure:"mode" validate:"omitempty,oneof=structured simple"`
	Debug          bool          `mapstructure:"debug"`
	Quiet          bool          `mapstructure:"quiet"`
	LogJSON        bool          `mapstructure:"log_json"`
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, ":80")
	v.SetDefault(KeySPARQLEndpoint, "http://database:8890/sparql")
	v.SetDefault(KeyShareRoot, "/share")
	v.SetDefault(KeyMaxFileSize, "50MB")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyMode, string(decision.ModeStructured))
	v.SetDefault(KeyRulesFile, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyLogJSON, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// mu.semte.ch services receive the endpoint under this name
	_ = v.BindEnv(KeySPARQLEndpoint, EnvPrefix+"_SPARQL_ENDPOINT", "MU_SPARQL_ENDPOINT")
}

// Load resolves and validates the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	size, err := pdftext.ParseSize(v.GetString(KeyMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyMaxFileSize, err)
	}
	cfg.MaxFileSize = size

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Pipeline builds the decision pipeline configuration: the rules file when
// set, otherwise the defaults, with Mode applied on top.
func (c *Config) Pipeline() (*decision.Config, error) {
	var (
		pc  *decision.Config
		err error
	)
	if c.RulesFile != "" {
		pc, err = decision.LoadConfig(c.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: %w", c.RulesFile, err)
		}
	} else {
		pc = decision.DefaultConfig()
	}
	if c.Mode != "" {
		pc.Mode = c.Mode
	}
	return pc, nil
}
