// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Conversation management commands.
//
// Command: sessions
// Short:   List, inspect, and delete saved conversations
//
// Examples:
//   offgpt sessions list
//   offgpt sessions show 4cbb2a6e
//   offgpt sessions delete 4cbb2a6e --confirm
//   offgpt sessions clear 4cbb2a6e --confirm
package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
	"github.com/jeranaias/offgpt-tui/internal/util"
)

// RunSessions dispatches the sessions subcommands.
func (a *App) RunSessions(ctx context.Context, p *ArgParser) error {
	switch p.Subcommand() {
	case "", "list":
		return a.sessionsList(ctx)
	case "show":
		return a.sessionsShow(ctx, p.Positional(1))
	case "delete":
		return a.sessionsDelete(ctx, p.Positional(1), p.BoolFlag("confirm"))
	case "clear":
		return a.sessionsClear(ctx, p.Positional(1), p.BoolFlag("confirm"))
	default:
		return fmt.Errorf("unknown sessions subcommand %q (try list, show, delete, clear)", p.Subcommand())
	}
}

func (a *App) sessionsList(ctx context.Context) error {
	items, err := a.Store.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no conversations yet")
		return nil
	}

	for _, c := range items {
		count, err := a.Store.TurnCount(ctx, c.ID)
		if err != nil {
			return err
		}
		created := c.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("%s  %s  %3d turns  %s\n", shortID(c.ID), created, count, summaryOrPlaceholder(c))
	}
	return nil
}

func (a *App) sessionsShow(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("usage: offgpt sessions show <id>")
	}
	id, err := a.resolveConversation(ctx, ref)
	if err != nil {
		return err
	}

	turns, err := a.Store.GetHistory(ctx, id)
	if err != nil {
		return err
	}
	for _, t := range turns {
		ts := t.Timestamp.Format("15:04:05")
		fmt.Printf("[%s] you: %s\n", ts, util.Flatten(t.UserMessage))
		fmt.Printf("[%s] assistant: %s\n", ts, util.Flatten(t.Response))
	}
	return nil
}

func (a *App) sessionsDelete(ctx context.Context, ref string, confirmed bool) error {
	if ref == "" {
		return fmt.Errorf("usage: offgpt sessions delete <id> --confirm")
	}
	if !confirmed {
		return fmt.Errorf("deleting a conversation is permanent; re-run with --confirm")
	}
	id, err := a.resolveConversation(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteConversation(ctx, id); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("deleted " + shortID(id)))
	return nil
}

func (a *App) sessionsClear(ctx context.Context, ref string, confirmed bool) error {
	if ref == "" {
		return fmt.Errorf("usage: offgpt sessions clear <id> --confirm")
	}
	if !confirmed {
		return fmt.Errorf("clearing history is permanent; re-run with --confirm")
	}
	id, err := a.resolveConversation(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.Store.ClearHistory(ctx, id); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("cleared history of " + shortID(id)))
	return nil
}
