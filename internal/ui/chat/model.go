// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/offgpt-tui/internal/session"
	"github.com/jeranaias/offgpt-tui/internal/storage"
	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

const sidebarWidth = 28

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	ctrl  *session.Controller
	store *storage.Store

	modelName      string
	showTimestamps bool

	// Conversation state
	conversations []storage.Conversation
	selected      int
	activeID      string
	messages      []Message

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// Layout
	width  int
	height int
	ready  bool

	// Turn state
	busy      bool
	status    string
	quotaWarn bool
}

// New creates the chat model. The conversation list loads on Init.
// Options adjusts presentation details of the chat screen.
type Options struct {
	// ShowTimestamps renders a clock next to each message label.
	ShowTimestamps bool
}

func New(ctrl *session.Controller, store *storage.Store, theme *styles.Theme, modelName string, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	return Model{
		theme:          theme,
		keys:           DefaultKeyMap(),
		ctrl:           ctrl,
		store:          store,
		modelName:      modelName,
		showTimestamps: opts.ShowTimestamps,
		input:          ti,
		spinner:        sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadConversationsCmd(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case conversationsMsg:
		return m.handleConversations(msg)

	case convCreatedMsg:
		if msg.err != nil {
			m.status = "could not create conversation: " + msg.err.Error()
			return m, nil
		}
		m.activeID = msg.id
		m.messages = nil
		m.refreshViewport()
		return m, m.loadConversationsCmd()

	case convDeletedMsg:
		if msg.err != nil {
			m.status = "could not delete conversation: " + msg.err.Error()
			return m, nil
		}
		if msg.id == m.activeID {
			m.activeID = ""
			m.messages = nil
		}
		return m, m.loadConversationsCmd()

	case convClearedMsg:
		if msg.err != nil {
			m.status = "could not clear history: " + msg.err.Error()
			return m, nil
		}
		if msg.id == m.activeID {
			m.messages = nil
			m.refreshViewport()
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.status = "could not load history: " + msg.err.Error()
			return m, nil
		}
		if msg.conversationID != m.activeID {
			return m, nil
		}
		m.messages = transcriptFromTurns(msg.turns)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case replyMsg:
		return m.handleReply(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.handleSend()

	case key.Matches(msg, m.keys.NewConv):
		return m, m.createConversationCmd()

	case key.Matches(msg, m.keys.DeleteConv):
		if m.activeID == "" {
			return m, nil
		}
		return m, m.deleteConversationCmd(m.activeID)

	case key.Matches(msg, m.keys.ClearConv):
		if m.activeID == "" || m.busy {
			return m, nil
		}
		return m, m.clearHistoryCmd(m.activeID)

	case key.Matches(msg, m.keys.NextConv):
		return m.selectConversation(m.selected + 1)

	case key.Matches(msg, m.keys.PrevConv):
		return m.selectConversation(m.selected - 1)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSend() (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "still thinking..."
		return m, nil
	}
	if m.activeID == "" {
		return m, nil
	}

	text := m.input.Value()
	if text == "" {
		return m, nil
	}

	m.messages = append(m.messages, Message{
		Role:    RoleUser,
		Content: text,
		Time:    time.Now(),
	})
	m.refreshViewport()
	m.viewport.GotoBottom()

	m.input.Reset()
	m.busy = true
	m.status = ""

	return m, tea.Batch(
		m.spinner.Tick,
		m.submitTurnCmd(m.activeID, text),
	)
}

func (m Model) handleConversations(msg conversationsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "could not list conversations: " + msg.err.Error()
		return m, nil
	}
	m.conversations = msg.items

	// First launch: start with a fresh conversation.
	if len(m.conversations) == 0 {
		return m, m.createConversationCmd()
	}

	// Keep the selection pointing at the active conversation.
	m.selected = 0
	for i, c := range m.conversations {
		if c.ID == m.activeID {
			m.selected = i
		}
	}
	if m.activeID == "" {
		m.activeID = m.conversations[0].ID
		return m, m.loadHistoryCmd(m.activeID)
	}
	return m, nil
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		switch {
		case errors.Is(msg.err, session.ErrConversationBusy):
			m.status = "a turn is already in flight"
		case errors.Is(msg.err, session.ErrEmptyMessage):
			m.status = "nothing to send"
		default:
			m.status = msg.err.Error()
		}
		return m, nil
	}

	if msg.conversationID != m.activeID {
		// Reply for a conversation the user already switched away from;
		// it is persisted, just not shown.
		return m, nil
	}

	m.messages = append(m.messages, Message{
		Role:    RoleAssistant,
		Content: msg.reply,
		Time:    time.Now(),
	})
	m.quotaWarn = msg.quota != nil && msg.quota.Exceeded
	m.refreshViewport()
	m.viewport.GotoBottom()

	// First reply fixes the summary; refresh the sidebar.
	return m, m.loadConversationsCmd()
}

func (m *Model) selectConversation(idx int) (tea.Model, tea.Cmd) {
	if len(m.conversations) == 0 {
		return *m, nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.conversations) {
		idx = len(m.conversations) - 1
	}
	if idx == m.selected && m.conversations[idx].ID == m.activeID {
		return *m, nil
	}
	m.selected = idx
	m.activeID = m.conversations[idx].ID
	m.messages = nil
	return *m, m.loadHistoryCmd(m.activeID)
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentWidth := width - sidebarWidth
	if contentWidth < 20 {
		contentWidth = 20
	}
	// header + input + status each take one row plus input border.
	contentHeight := height - 4
	if contentHeight < 3 {
		contentHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = contentHeight
	}
	m.input.Width = width - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contentWidth-4),
	)
	if err == nil {
		m.renderer = renderer
	}
}

// transcriptFromTurns expands stored turns into transcript messages.
func transcriptFromTurns(turns []storage.Turn) []Message {
	msgs := make([]Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: t.UserMessage, Time: t.Timestamp},
			Message{Role: RoleAssistant, Content: t.Response, Time: t.Timestamp},
		)
	}
	return msgs
}
