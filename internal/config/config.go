// Package config provides configuration types for quillctl.
package config

import (
	"time"
)

// Config is the top-level configuration for quillctl.
type Config struct {
	// API configures the Quillpress admin API endpoint.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Credentials configures where the session credential slot lives.
	Credentials CredentialsConfig `yaml:"credentials" mapstructure:"credentials"`

	// Log configures logging output.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Metrics configures the optional Prometheus listener used by watch mode.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing enables stdout trace/metric export for debugging.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// APIConfig configures the platform endpoint and request behavior.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:3000/api/v1.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// Timeout bounds each request (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
	// Retries is how many times idempotent reads are retried.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"min=0,max=10"`
}

// CredentialsConfig selects and locates the credential store backend.
type CredentialsConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=file sqlite"`
	// Path is the credential file or database path.
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
	// Profile names the slot within a sqlite backend.
	Profile string `yaml:"profile" mapstructure:"profile"`
}

// LogConfig configures the slog output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	// File, when set, adds a rotating log file alongside stderr.
	File string `yaml:"file" mapstructure:"file"`
	// MaxSizeMB bounds each rotated file.
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb" validate:"min=0"`
	// MaxBackups bounds how many rotated files are kept.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups" validate:"min=0"`
}

// MetricsConfig configures the Prometheus scrape listener.
type MetricsConfig struct {
	// ListenAddr is the host:port promhttp binds to. Empty disables it.
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr" validate:"omitempty,hostname_port"`
}

// TracingConfig toggles stdout OTel export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Default values applied by SetDefaults.
const (
	DefaultBaseURL = "http://localhost:3000/api/v1"
	DefaultTimeout = "30s"
	DefaultRetries = 3
	DefaultBackend = "file"
	DefaultProfile = "default"
)

// SetDefaults fills in zero-valued optional fields.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.Retries == 0 {
		c.API.Retries = DefaultRetries
	}
	if c.Credentials.Backend == "" {
		c.Credentials.Backend = DefaultBackend
	}
	if c.Credentials.Path == "" {
		c.Credentials.Path = defaultCredentialPath(c.Credentials.Backend)
	}
	if c.Credentials.Profile == "" {
		c.Credentials.Profile = DefaultProfile
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// RequestTimeout parses the configured timeout. Call after Validate.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
