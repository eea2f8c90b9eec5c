// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// loadConversationsCmd refreshes the sidebar list.
func (m *Model) loadConversationsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.store.ListConversations(context.Background())
		return conversationsMsg{items: items, err: err}
	}
}

// loadHistoryCmd fetches the transcript for one conversation.
func (m *Model) loadHistoryCmd(conversationID string) tea.Cmd {
	return func() tea.Msg {
		turns, err := m.store.GetHistory(context.Background(), conversationID)
		return historyMsg{conversationID: conversationID, turns: turns, err: err}
	}
}

// createConversationCmd starts a new conversation.
func (m *Model) createConversationCmd() tea.Cmd {
	return func() tea.Msg {
		id, err := m.ctrl.NewConversation(context.Background())
		return convCreatedMsg{id: id, err: err}
	}
}

// deleteConversationCmd removes a conversation and its history.
func (m *Model) deleteConversationCmd(conversationID string) tea.Cmd {
	return func() tea.Msg {
		err := m.store.DeleteConversation(context.Background(), conversationID)
		return convDeletedMsg{id: conversationID, err: err}
	}
}

// clearHistoryCmd wipes a conversation's transcript, keeping the
// conversation itself.
func (m *Model) clearHistoryCmd(conversationID string) tea.Cmd {
	return func() tea.Msg {
		err := m.store.ClearHistory(context.Background(), conversationID)
		return convClearedMsg{id: conversationID, err: err}
	}
}

// submitTurnCmd runs a full chat turn off the update loop.
func (m *Model) submitTurnCmd(conversationID, message string) tea.Cmd {
	done := m.ctrl.SubmitAsync(context.Background(), conversationID, message)
	return func() tea.Msg {
		out := <-done
		if out.Err != nil {
			return replyMsg{conversationID: conversationID, err: out.Err}
		}
		return replyMsg{
			conversationID: conversationID,
			reply:          out.Reply,
			quota:          out.Quota,
		}
	}
}
