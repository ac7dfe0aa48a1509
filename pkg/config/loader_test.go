package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Prefix != "!" {
		t.Errorf("Expected default prefix, got %q", cfg.Prefix)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Logger.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"prefix": ">>", "discord": {"token": "abc"}, "logger": {"level": "debug"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Prefix != ">>" {
		t.Errorf("Expected prefix from file, got %q", cfg.Prefix)
	}
	if cfg.Discord.Token != "abc" {
		t.Errorf("Expected token from file, got %q", cfg.Discord.Token)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Expected log level from file, got %q", cfg.Logger.Level)
	}
}

func TestLoadTokenFromEnv(t *testing.T) {
	t.Setenv("MODBOT_DISCORD_TOKEN", "env-token")
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("Expected token from environment, got %q", cfg.Discord.Token)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation to fail without a token")
	}

	cfg.Discord.Token = "abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cfg.Prefix = "! "
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation to fail for whitespace prefix")
	}
}
