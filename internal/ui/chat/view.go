// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(),
		m.viewport.View(),
	))
	b.WriteString("\n")
	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("offgpt")
	model := m.theme.HeaderModel.Render(" " + m.modelName)
	return m.theme.Header.Width(m.width).Render(title + model)
}

func (m Model) renderSidebar() string {
	height := m.viewport.Height
	var lines []string
	lines = append(lines, m.theme.SidebarTitle.Render("Conversations"))

	for i, c := range m.conversations {
		if len(lines) >= height {
			break
		}
		summary := c.Summary
		if summary == "" {
			summary = "(new chat)"
		}
		summary = runewidth.Truncate(summary, sidebarWidth-4, "...")
		if i == m.selected {
			lines = append(lines, m.theme.ConversationSelected.Render("> "+summary))
		} else {
			lines = append(lines, m.theme.ConversationItem.Render("  "+summary))
		}
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 1).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// renderTranscript builds the viewport content from the message list.
func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return m.theme.Timestamp.Render("No messages yet. Say something.")
	}

	var parts []string
	for _, msg := range m.messages {
		ts := ""
		if m.showTimestamps {
			ts = " " + m.theme.Timestamp.Render(msg.Time.Format("15:04"))
		}
		switch msg.Role {
		case RoleUser:
			label := m.theme.UserLabel.Render("You") + ts
			parts = append(parts, label+"\n"+m.theme.UserBubble.Render(msg.Content))
		case RoleAssistant:
			label := m.theme.AssistantLabel.Render(m.modelName) + ts
			parts = append(parts, label+"\n"+m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Content)))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderMarkdown renders assistant text as markdown, falling back to
// the raw text when rendering fails.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.ctrl.Degraded():
		left = m.theme.StatusDegraded.Render("degraded")
	case m.busy:
		left = m.spinner.View() + m.theme.StatusWarning.Render(" thinking")
	default:
		left = m.theme.StatusReady.Render("ready")
	}

	if m.quotaWarn {
		left += "  " + m.theme.StatusWarning.Render("storage limit exceeded")
	}
	if m.status != "" {
		left += "  " + m.status
	}

	shortcuts := strings.Join([]string{
		m.theme.ShortcutKey.Render("^N") + m.theme.ShortcutDesc.Render(" new"),
		m.theme.ShortcutKey.Render("^J/^K") + m.theme.ShortcutDesc.Render(" switch"),
		m.theme.ShortcutKey.Render("^X") + m.theme.ShortcutDesc.Render(" delete"),
		m.theme.ShortcutKey.Render("^L") + m.theme.ShortcutDesc.Render(" clear"),
		m.theme.ShortcutKey.Render("^C") + m.theme.ShortcutDesc.Render(" quit"),
	}, " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(shortcuts) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + shortcuts)
}
