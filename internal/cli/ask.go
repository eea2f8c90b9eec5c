// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler.
//
// Command: ask
// Short:   Ask a single question and exit
//
// Examples:
//   offgpt ask "What is a goroutine?"
//   offgpt ask --model phi-2 "Explain channels"
//
// The exchange is persisted like any other conversation; a later
// "offgpt sessions list" shows it.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

// RunAsk submits a single question in a fresh conversation and prints
// the reply.
func (a *App) RunAsk(ctx context.Context, query string) error {
	if query == "" {
		return fmt.Errorf("usage: offgpt ask \"question\"")
	}

	id, err := a.Ctrl.NewConversation(ctx)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	res, err := a.Ctrl.Submit(ctx, id, query)
	if err != nil {
		return err
	}

	fmt.Println(renderReply(res.Reply))

	if res.Quota.Err() != nil {
		fmt.Fprintln(os.Stderr, styles.RenderWarning(quotaMessage(res.Quota.SizeBytes, res.Quota.LimitBytes)))
	}
	return nil
}

// renderReply formats assistant text as terminal markdown, falling
// back to the raw text when rendering fails.
func renderReply(reply string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return reply
	}
	out, err := renderer.Render(reply)
	if err != nil {
		return reply
	}
	return out
}

func quotaMessage(size, limit int64) string {
	return fmt.Sprintf("storage limit exceeded (%d MB of %d MB); old conversations can be deleted with 'offgpt sessions delete'",
		size/(1024*1024), limit/(1024*1024))
}
