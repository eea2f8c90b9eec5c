// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jeranaias/offgpt-tui/internal/config"
	"github.com/jeranaias/offgpt-tui/internal/llm"
	"github.com/jeranaias/offgpt-tui/internal/session"
	"github.com/jeranaias/offgpt-tui/internal/storage"
)

// =============================================================================
// APPLICATION CONTEXT
// =============================================================================

// App bundles the wired components the command handlers need.
type App struct {
	Config *config.Config
	Store  *storage.Store
	Engine *llm.Engine
	Ctrl   *session.Controller
	Log    zerolog.Logger
}

// Run dispatches a parsed non-TUI invocation. The caller handles
// CmdTUI itself.
func (a *App) Run(ctx context.Context, args *Args) error {
	switch args.Command {
	case CmdAsk:
		return a.RunAsk(ctx, args.Query)
	case CmdChat:
		return a.RunChat(ctx)
	case CmdSessions:
		return a.RunSessions(ctx, args.parser)
	case CmdConfig:
		return a.RunConfig(args.parser)
	case CmdStatus:
		return a.RunStatus(ctx)
	case CmdVersion:
		PrintVersion()
		return nil
	case CmdHelp:
		PrintUsage()
		return nil
	default:
		return fmt.Errorf("unhandled command %d", args.Command)
	}
}
