// Package config defines process configuration for the transcript CLI and
// its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and TRANSCRIPT_* env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"

	"github.com/okian/transcript/internal/probe"
)

// Output formats accepted by the CLI.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string `koanf:"base_url"`

	// TimeoutMS bounds each HTTP round trip; 0 disables the timeout.
	TimeoutMS int `koanf:"timeout_ms"`

	// RequestID toggles the X-Request-ID header.
	RequestID bool `koanf:"request_id"`

	// MetricsEnabled toggles client metrics collection.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// Output selects the CLI rendering: table, json or yaml.
	Output string `koanf:"output"`

	// ProbeWorkers and ProbeRequests are the probe command defaults.
	ProbeWorkers  int `koanf:"probe_workers"`
	ProbeRequests int `koanf:"probe_requests"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		BaseURL:        "http://localhost:8000",
		TimeoutMS:      0,
		RequestID:      true,
		MetricsEnabled: true,
		Output:         OutputTable,
		ProbeWorkers:   probe.DefaultWorkers,
		ProbeRequests:  probe.DefaultRequests,
	}
}

// Timeout returns TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
