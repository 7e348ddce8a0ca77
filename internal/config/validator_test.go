package config

import (
	"os"
	"strings"
	"testing"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

// minimalValidConfig returns a minimal valid Config for testing.
func minimalValidConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	if err := minimalValidConfig().Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantErr: "base_url",
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Credentials.Backend = "redis" },
			wantErr: "must be one of",
		},
		{
			name:    "missing credential path",
			mutate:  func(c *Config) { c.Credentials.Path = "" },
			wantErr: "required",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.API.Retries = -1 },
			wantErr: "at least",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "must be one of",
		},
		{
			name:    "bad metrics addr",
			mutate:  func(c *Config) { c.Metrics.ListenAddr = "no-port" },
			wantErr: "host:port",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.API.Timeout = "soon" },
			wantErr: "duration",
		},
		{
			name:    "profile on file backend",
			mutate:  func(c *Config) { c.Credentials.Profile = "alice" },
			wantErr: "sqlite",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := minimalValidConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_SqliteProfileAllowed(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Credentials.Backend = "sqlite"
	cfg.Credentials.Profile = "alice"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for sqlite profile", err)
	}
}
