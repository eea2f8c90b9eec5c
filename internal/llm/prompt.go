// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import "strings"

// =============================================================================
// PROMPT GRAMMAR
// =============================================================================

// Role markers of the chat prompt grammar. Each section is opened by a
// role marker on its own line and closed by MarkerEnd.
const (
	MarkerSystem    = "<|system|>"
	MarkerUser      = "<|user|>"
	MarkerAssistant = "<|assistant|>"
	MarkerEnd       = "<|end|>"
)

// allMarkers, in scan order.
var allMarkers = []string{MarkerSystem, MarkerUser, MarkerAssistant, MarkerEnd}

// Exchange is one completed user/assistant turn included as context.
type Exchange struct {
	User      string
	Assistant string
}

// Render builds the full prompt for a completion request: the system
// section, the prior exchanges oldest first, the new user message, and
// a trailing open assistant marker for the model to continue from.
func Render(system string, history []Exchange, userMessage string) string {
	var b strings.Builder

	if system != "" {
		writeSection(&b, MarkerSystem, system)
	}
	for _, ex := range history {
		writeSection(&b, MarkerUser, ex.User)
		writeSection(&b, MarkerAssistant, ex.Assistant)
	}
	writeSection(&b, MarkerUser, userMessage)

	b.WriteString(MarkerAssistant)
	b.WriteString("\n")
	return b.String()
}

func writeSection(b *strings.Builder, marker, content string) {
	b.WriteString(marker)
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(MarkerEnd)
	b.WriteString("\n")
}

// StopSequences returns the stop strings sent with every completion so
// the model does not run on into a fabricated next turn.
func StopSequences() []string {
	return []string{MarkerEnd, MarkerUser}
}

// truncateAtAny cuts s at the earliest occurrence of any of the given
// substrings and trims surrounding whitespace.
func truncateAtAny(s string, stops []string) string {
	cut := len(s)
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if idx := strings.Index(s, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(s[:cut])
}
