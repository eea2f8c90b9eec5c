// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import "strings"

// =============================================================================
// REPLY EXTRACTION
// =============================================================================

// ExtractReply recovers the assistant's reply from raw model output.
// Small local models routinely echo the prompt grammar back, so the
// raw text may open with a role marker, repeat earlier turns, or carry
// markers mid-line.
//
// The policy: return the first non-empty line that does not begin with
// a role marker, truncated at any marker embedded later in the line.
// If every line is empty or marker-prefixed, fall back to the first
// line that survives having its markers stripped. Anything else
// degrades to the empty string; the caller decides how to present
// that.
//
// ExtractReply is pure: no I/O, no state.
func ExtractReply(raw string) string {
	lines := strings.Split(raw, "\n")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || hasMarkerPrefix(trimmed) {
			continue
		}
		return truncateAtAny(trimmed, allMarkers)
	}

	for _, line := range lines {
		if cleaned := strings.TrimSpace(stripMarkers(line)); cleaned != "" {
			return cleaned
		}
	}

	return ""
}

// hasMarkerPrefix reports whether the line opens with a role marker.
func hasMarkerPrefix(line string) bool {
	for _, m := range allMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// stripMarkers removes every role marker occurrence from s.
func stripMarkers(s string) string {
	for _, m := range allMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return s
}
