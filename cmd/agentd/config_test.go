package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected default server config: %+v", cfg.Server)
	}
	if !cfg.TTS.Enabled {
		t.Fatalf("expected TTS enabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9000\nrooms:\n  url: http://rooms.internal\n  api_key: secret\ntts:\n  enabled: false\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port override, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("expected default host to survive partial override, got %q", cfg.Server.Host)
	}
	if cfg.Rooms.URL != "http://rooms.internal" || cfg.Rooms.APIKey != "secret" {
		t.Fatalf("unexpected rooms config: %+v", cfg.Rooms)
	}
	if cfg.TTS.Enabled {
		t.Fatalf("expected TTS disabled")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
