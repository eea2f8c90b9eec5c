// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strings"

// Truncate shortens s to at most max runes, replacing the tail with "..."
// when truncation happens. Rune-based so multi-byte text is never split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// Flatten collapses all whitespace runs (including newlines) in s into
// single spaces and trims the ends. Used before deriving list previews.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
