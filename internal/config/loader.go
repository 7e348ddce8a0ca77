// Package config provides configuration loading for quillctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for quillctl.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the binary itself, which
// shares the base name, is never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError, which callers handle gracefully.
		viper.SetConfigName("quillctl")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: QUILLCTL_API_BASE_URL
	viper.SetEnvPrefix("QUILLCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a quillctl config file with
// an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".quillctl"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "quillctl"))
		}
	} else {
		paths = append(paths, "/etc/quillctl")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for quillctl.yaml or .yml.
// Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "quillctl"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable support.
// Example: QUILLCTL_API_BASE_URL overrides api.base_url
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.timeout")
	_ = viper.BindEnv("api.retries")

	_ = viper.BindEnv("credentials.backend")
	_ = viper.BindEnv("credentials.path")
	_ = viper.BindEnv("credentials.profile")

	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("log.file")
	_ = viper.BindEnv("log.max_size_mb")
	_ = viper.BindEnv("log.max_backups")

	_ = viper.BindEnv("metrics.listen_addr")
	_ = viper.BindEnv("tracing.enabled")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but does
// NOT validate. Use this when CLI flags may override fields before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// defaultCredentialPath picks the per-user slot location for a backend.
func defaultCredentialPath(backend string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	name := "credentials.json"
	if backend == "sqlite" {
		name = "credentials.db"
	}
	return filepath.Join(home, ".quillctl", name)
}
