// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for offgpt.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.offgpt/config.toml
//   - ~/.offgpt/config.json
//   - Built-in defaults
//
// # Environment Overrides
//
//   - OFFGPT_MODEL_PATH: path to the model weights file
//   - OFFGPT_MODEL_NAME: runtime model name
//   - OFFGPT_RUNTIME_URL: inference runtime base URL
//   - OFFGPT_DB_PATH: history database location
//   - OFFGPT_STORAGE_LIMIT_MB: history storage quota
//   - OFFGPT_LOG_LEVEL: zerolog level name
package config
