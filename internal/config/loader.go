package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "TRANSCRIPT_"
	EnvFile   = "TRANSCRIPT_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRANSCRIPT_CONFIG is set
//  3. env (prefix TRANSCRIPT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// TRANSCRIPT_BASE_URL -> base_url. Underscores are kept to match the
	// flat koanf tags; TRANSCRIPT_CONFIG itself is not a config key.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvFile {
			return ""
		}
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url must be an absolute URL", ErrInvalidConfig)
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", ErrInvalidConfig)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalidConfig, c.Output)
	}
	return nil
}
