package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/quillpress/quillctl/internal/config"
)

func TestRootCommandRegistration(t *testing.T) {
	want := []string{
		"login", "logout", "status", "session",
		"books", "chapters", "coins", "config", "version",
	}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestConfigInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "quillctl.yaml")

	if err := runConfigInit(configInitCmd, []string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid yaml: %v", err)
	}
	if cfg.API.BaseURL != config.DefaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.Credentials.Backend != config.DefaultBackend {
		t.Errorf("expected default backend, got %q", cfg.Credentials.Backend)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quillctl.yaml")
	if err := os.WriteFile(path, []byte("api:\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := runConfigInit(configInitCmd, []string{path})
	if err == nil {
		t.Fatal("expected error on existing file")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}
