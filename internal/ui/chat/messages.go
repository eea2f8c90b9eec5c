// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/offgpt-tui/internal/storage"
)

// =============================================================================
// TRANSCRIPT MESSAGES
// =============================================================================

// Role identifies who produced a transcript message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// Message is one entry in the rendered transcript.
type Message struct {
	Role    Role
	Content string
	Time    time.Time
}

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// conversationsMsg carries the refreshed conversation list.
type conversationsMsg struct {
	items []storage.Conversation
	err   error
}

// historyMsg carries a conversation's full transcript.
type historyMsg struct {
	conversationID string
	turns          []storage.Turn
	err            error
}

// convCreatedMsg reports a newly created conversation.
type convCreatedMsg struct {
	id  string
	err error
}

// convDeletedMsg reports a completed delete.
type convDeletedMsg struct {
	id  string
	err error
}

// convClearedMsg reports a cleared transcript.
type convClearedMsg struct {
	id  string
	err error
}

// replyMsg is the outcome of a submitted turn.
type replyMsg struct {
	conversationID string
	reply          string
	quota          *storage.QuotaStatus
	err            error
}
