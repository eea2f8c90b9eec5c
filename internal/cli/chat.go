// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL.
//
// Command: chat
// Short:   Chat in the terminal without the full-screen TUI
//
// Interactive commands:
//   /new             Start a new conversation
//   /list            List conversations
//   /switch <id>     Switch to a conversation (id prefix is enough)
//   /history         Reprint the current transcript
//   /clear           Clear the current conversation's history
//   /help            Show commands
//   /quit, Ctrl+D    Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/offgpt-tui/internal/config"
	"github.com/jeranaias/offgpt-tui/internal/storage"
	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	replyLabelStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with a persistent history file.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newREPLInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &replInput{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}

	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *replInput) read(prompt string) (string, error) {
	s, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) != "" {
		in.line.AppendHistory(s)
	}
	return s, nil
}

func (in *replInput) close() {
	if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// RunChat runs the interactive REPL until the user exits.
func (a *App) RunChat(ctx context.Context) error {
	in := newREPLInput()
	defer in.close()

	fmt.Println(welcomeStyle.Render("offgpt chat"))
	if a.Ctrl.Degraded() {
		fmt.Println(styles.RenderWarning("model unavailable; replies will be placeholders"))
	} else {
		fmt.Println(infoStyle.Render("model: " + a.Engine.ModelName()))
	}
	fmt.Println(infoStyle.Render("type /help for commands, /quit to exit"))
	fmt.Println()

	conversationID, err := a.Ctrl.NewConversation(ctx)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	for {
		input, err := in.read(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "/") {
			quit, newID, err := a.handleREPLCommand(ctx, trimmed, conversationID)
			if err != nil {
				fmt.Println(styles.RenderError(err.Error()))
				continue
			}
			if quit {
				return nil
			}
			if newID != "" {
				conversationID = newID
			}
			continue
		}

		res, err := a.Ctrl.Submit(ctx, conversationID, trimmed)
		if err != nil {
			fmt.Println(styles.RenderError(err.Error()))
			continue
		}

		fmt.Println(replyLabelStyle.Render("assistant:"))
		fmt.Println(renderReply(res.Reply))
		if res.Quota != nil && res.Quota.Exceeded {
			fmt.Println(styles.RenderWarning(quotaMessage(res.Quota.SizeBytes, res.Quota.LimitBytes)))
		}
	}
}

// handleREPLCommand runs a slash command. It returns quit=true on
// /quit and a non-empty newID when the active conversation changed.
func (a *App) handleREPLCommand(ctx context.Context, input, conversationID string) (quit bool, newID string, err error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true, "", nil

	case "/help", "/h":
		fmt.Println(infoStyle.Render("/new /list /switch <id> /history /clear /quit"))
		return false, "", nil

	case "/new":
		id, err := a.Ctrl.NewConversation(ctx)
		if err != nil {
			return false, "", err
		}
		fmt.Println(infoStyle.Render("started conversation " + shortID(id)))
		return false, id, nil

	case "/list":
		items, err := a.Store.ListConversations(ctx)
		if err != nil {
			return false, "", err
		}
		for _, c := range items {
			marker := "  "
			if c.ID == conversationID {
				marker = "* "
			}
			fmt.Printf("%s%s  %s\n", marker, shortID(c.ID), summaryOrPlaceholder(c))
		}
		return false, "", nil

	case "/switch":
		if len(fields) < 2 {
			return false, "", fmt.Errorf("usage: /switch <id>")
		}
		id, err := a.resolveConversation(ctx, fields[1])
		if err != nil {
			return false, "", err
		}
		fmt.Println(infoStyle.Render("switched to " + shortID(id)))
		return false, id, nil

	case "/history":
		turns, err := a.Store.GetHistory(ctx, conversationID)
		if err != nil {
			return false, "", err
		}
		for _, t := range turns {
			fmt.Println(promptStyle.Render("you> ") + t.UserMessage)
			fmt.Println(replyLabelStyle.Render("assistant: ") + t.Response)
		}
		return false, "", nil

	case "/clear", "/c":
		if err := a.Store.ClearHistory(ctx, conversationID); err != nil {
			return false, "", err
		}
		fmt.Println(infoStyle.Render("history cleared"))
		return false, "", nil

	default:
		return false, "", fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
}

// resolveConversation matches a full id or unique id prefix.
func (a *App) resolveConversation(ctx context.Context, prefix string) (string, error) {
	items, err := a.Store.ListConversations(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, c := range items {
		if c.ID == prefix {
			return c.ID, nil
		}
		if strings.HasPrefix(c.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("ambiguous id prefix %q", prefix)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no conversation matches %q", prefix)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func summaryOrPlaceholder(c storage.Conversation) string {
	if c.Summary == "" {
		return "(new chat)"
	}
	return c.Summary
}
