// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// DEFAULTS AND VALIDATION TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", cfg.Model.MaxTokens)
	}
	if cfg.Model.Temperature != 0.7 {
		t.Errorf("Temperature = %g, want 0.7", cfg.Model.Temperature)
	}
	if cfg.History.StorageLimitMB != 500 {
		t.Errorf("StorageLimitMB = %d, want 500", cfg.History.StorageLimitMB)
	}
	if cfg.Chat.ContextTurns != 10 {
		t.Errorf("ContextTurns = %d, want 10", cfg.Chat.ContextTurns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max tokens", func(c *Config) { c.Model.MaxTokens = -1 }},
		{"temperature out of range", func(c *Config) { c.Model.Temperature = 3.5 }},
		{"negative storage limit", func(c *Config) { c.History.StorageLimitMB = -5 }},
		{"zero context turns", func(c *Config) { c.Chat.ContextTurns = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// =============================================================================
// LOAD/SAVE TESTS
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Model.Name = "phi3"
	cfg.History.StorageLimitMB = 250

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Model.Name != "phi3" {
		t.Errorf("Model.Name = %q, want %q", loaded.Model.Name, "phi3")
	}
	if loaded.History.StorageLimitMB != 250 {
		t.Errorf("StorageLimitMB = %d, want 250", loaded.History.StorageLimitMB)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"model": {"name": "mistral", "max_tokens": 128}}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Model.Name != "mistral" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "mistral")
	}
	if cfg.Model.MaxTokens != 128 {
		t.Errorf("MaxTokens = %d, want 128", cfg.Model.MaxTokens)
	}
	// Unset fields come from defaults.
	if cfg.Chat.ContextTurns != 10 {
		t.Errorf("ContextTurns = %d, want default 10", cfg.Chat.ContextTurns)
	}
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OFFGPT_MODEL_NAME", "llama3")
	t.Setenv("OFFGPT_STORAGE_LIMIT_MB", "64")
	t.Setenv("OFFGPT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Model.Name != "llama3" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "llama3")
	}
	if cfg.History.StorageLimitMB != 64 {
		t.Errorf("StorageLimitMB = %d, want 64", cfg.History.StorageLimitMB)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestEnvOverride_InvalidLimitIgnored(t *testing.T) {
	t.Setenv("OFFGPT_STORAGE_LIMIT_MB", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.History.StorageLimitMB != 500 {
		t.Errorf("StorageLimitMB = %d, want default 500", cfg.History.StorageLimitMB)
	}
}

// =============================================================================
// GET/SET TESTS
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("model.max_tokens", "512"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cfg.Get("model.max_tokens")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.(int) != 512 {
		t.Errorf("Get = %v, want 512", got)
	}

	if err := cfg.Set("model.max_tokens", "zero"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if err := cfg.Set("no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := cfg.Get("no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}

	// Set validates the resulting config.
	if err := cfg.Set("ui.theme", "solarized"); err == nil {
		t.Error("expected validation error for bad theme")
	}
}
