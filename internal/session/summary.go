// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/offgpt-tui/internal/util"
)

// summaryTokens is how many leading words of the first message make up
// the conversation summary.
const summaryTokens = 5

// summaryMaxLen caps the summary length; longer summaries are
// truncated with an ellipsis.
const summaryMaxLen = 30

// DeriveSummary builds a conversation summary from its first user
// message: the first five whitespace-separated tokens, capped at 30
// characters.
func DeriveSummary(message string) string {
	fields := strings.Fields(message)
	if len(fields) > summaryTokens {
		fields = fields[:summaryTokens]
	}
	return util.Truncate(strings.Join(fields, " "), summaryMaxLen)
}
