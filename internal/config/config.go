// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/offgpt-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete offgpt configuration.
type Config struct {
	// Model configuration
	Model ModelConfig `toml:"model" json:"model"`

	// History (conversation store) configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Chat (session controller) configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// ModelConfig contains model and inference runtime settings.
type ModelConfig struct {
	// Path is the location of the model weights file (GGUF).
	Path string `toml:"path" json:"path"`
	// Name is the model name registered with the local runtime.
	Name string `toml:"name" json:"name"`
	// RuntimeURL is the base URL of the local inference runtime.
	RuntimeURL string `toml:"runtime_url" json:"runtime_url"`
	// MaxTokens caps the number of tokens generated per reply.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// Temperature controls sampling randomness (0 = deterministic).
	Temperature float64 `toml:"temperature" json:"temperature"`
}

// HistoryConfig contains conversation store settings.
type HistoryConfig struct {
	// DBPath is the SQLite history database location.
	DBPath string `toml:"db_path" json:"db_path"`
	// StorageLimitMB is the advisory on-disk quota for the history store.
	StorageLimitMB int `toml:"storage_limit_mb" json:"storage_limit_mb"`
}

// ChatConfig contains session controller settings.
type ChatConfig struct {
	// ContextTurns is how many prior turns are replayed into each prompt.
	ContextTurns int `toml:"context_turns" json:"context_turns"`
	// SystemPrompt is the fixed instruction opening every rendered prompt.
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// Path is the log file location (empty = ~/.offgpt/offgpt.log).
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps displays per-message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultSystemPrompt is the fixed system instruction used when the
// config does not override it.
const DefaultSystemPrompt = "You are a helpful assistant running fully offline on the user's machine. Answer concisely."

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Model: ModelConfig{
			Path:        filepath.Join(home, ".offgpt", "models", "tinyllama-1.1b-chat.Q4_K_M.gguf"),
			Name:        "tinyllama",
			RuntimeURL:  "http://127.0.0.1:11434",
			MaxTokens:   256,
			Temperature: 0.7,
		},
		History: HistoryConfig{
			DBPath:         filepath.Join(home, ".offgpt", "history.db"),
			StorageLimitMB: 500,
		},
		Chat: ChatConfig{
			ContextTurns: 10,
			SystemPrompt: DefaultSystemPrompt,
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(home, ".offgpt", "offgpt.log"),
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the offgpt configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".offgpt"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := PathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := PathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies env overrides, fills defaults, and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Model.Path == "" {
		c.Model.Path = defaults.Model.Path
	}
	if c.Model.Name == "" {
		c.Model.Name = defaults.Model.Name
	}
	if c.Model.RuntimeURL == "" {
		c.Model.RuntimeURL = defaults.Model.RuntimeURL
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = defaults.Model.MaxTokens
	}
	if c.Model.Temperature == 0 {
		c.Model.Temperature = defaults.Model.Temperature
	}

	if c.History.DBPath == "" {
		c.History.DBPath = defaults.History.DBPath
	}
	if c.History.StorageLimitMB == 0 {
		c.History.StorageLimitMB = defaults.History.StorageLimitMB
	}

	if c.Chat.ContextTurns == 0 {
		c.Chat.ContextTurns = defaults.Chat.ContextTurns
	}
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = defaults.Chat.SystemPrompt
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Path == "" {
		c.Log.Path = defaults.Log.Path
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# offgpt configuration file\n")
	sb.WriteString("# Generated by offgpt - edit with care\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := url.Parse(c.Model.RuntimeURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "model.runtime_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	}
	if c.Model.MaxTokens < 1 {
		errs = append(errs, ValidationError{
			Field:   "model.max_tokens",
			Message: fmt.Sprintf("must be positive, got %d", c.Model.MaxTokens),
		})
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "model.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %g", c.Model.Temperature),
		})
	}

	if c.History.StorageLimitMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "history.storage_limit_mb",
			Message: fmt.Sprintf("must be positive, got %d", c.History.StorageLimitMB),
		})
	}

	if c.Chat.ContextTurns < 1 {
		errs = append(errs, ValidationError{
			Field:   "chat.context_turns",
			Message: fmt.Sprintf("must be positive, got %d", c.Chat.ContextTurns),
		})
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error", c.Log.Level),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if path := os.Getenv("OFFGPT_MODEL_PATH"); path != "" {
		c.Model.Path = path
	}
	if name := os.Getenv("OFFGPT_MODEL_NAME"); name != "" {
		c.Model.Name = name
	}
	if u := os.Getenv("OFFGPT_RUNTIME_URL"); u != "" {
		c.Model.RuntimeURL = u
	}
	if path := os.Getenv("OFFGPT_DB_PATH"); path != "" {
		c.History.DBPath = path
	}
	if limit := os.Getenv("OFFGPT_STORAGE_LIMIT_MB"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			c.History.StorageLimitMB = n
		}
	}
	if level := os.Getenv("OFFGPT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "model.max_tokens").
func (c *Config) Get(key string) (interface{}, error) {
	switch strings.ToLower(key) {
	case "model.path":
		return c.Model.Path, nil
	case "model.name":
		return c.Model.Name, nil
	case "model.runtime_url":
		return c.Model.RuntimeURL, nil
	case "model.max_tokens":
		return c.Model.MaxTokens, nil
	case "model.temperature":
		return c.Model.Temperature, nil
	case "history.db_path":
		return c.History.DBPath, nil
	case "history.storage_limit_mb":
		return c.History.StorageLimitMB, nil
	case "chat.context_turns":
		return c.Chat.ContextTurns, nil
	case "chat.system_prompt":
		return c.Chat.SystemPrompt, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.path":
		return c.Log.Path, nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.show_timestamps":
		return c.UI.ShowTimestamps, nil
	}
	return nil, fmt.Errorf("unknown field: %s", key)
}

// Set sets a configuration value from its string form using dot notation.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "model.path":
		c.Model.Path = value
	case "model.name":
		c.Model.Name = value
	case "model.runtime_url":
		c.Model.RuntimeURL = value
	case "model.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		c.Model.MaxTokens = n
	case "model.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %w", err)
		}
		c.Model.Temperature = f
	case "history.db_path":
		c.History.DBPath = value
	case "history.storage_limit_mb":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		c.History.StorageLimitMB = n
	case "chat.context_turns":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		c.Chat.ContextTurns = n
	case "chat.system_prompt":
		c.Chat.SystemPrompt = value
	case "log.level":
		c.Log.Level = value
	case "log.path":
		c.Log.Path = value
	case "ui.theme":
		c.UI.Theme = value
	case "ui.show_timestamps":
		c.UI.ShowTimestamps = value == "1" || strings.EqualFold(value, "true")
	default:
		return fmt.Errorf("unknown field: %s", key)
	}
	return c.Validate()
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	return []string{
		"model.path",
		"model.name",
		"model.runtime_url",
		"model.max_tokens",
		"model.temperature",
		"history.db_path",
		"history.storage_limit_mb",
		"chat.context_turns",
		"chat.system_prompt",
		"log.level",
		"log.path",
		"ui.theme",
		"ui.show_timestamps",
	}
}
