// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for offgpt.
//
// It contains rune-safe string truncation used by the summary and list
// views, and an atomic file writer used for configuration saves.
package util
