// offgpt - offline LLM chat for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/jeranaias/offgpt-tui/internal/cli"
	"github.com/jeranaias/offgpt-tui/internal/config"
	"github.com/jeranaias/offgpt-tui/internal/llm"
	"github.com/jeranaias/offgpt-tui/internal/session"
	"github.com/jeranaias/offgpt-tui/internal/storage"
	"github.com/jeranaias/offgpt-tui/internal/ui/chat"
	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

// Build metadata, injected with -ldflags at release time.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate
}

func main() {
	args := cli.Parse(os.Args[1:])

	// Help and version need no wiring at all.
	switch args.Command {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "offgpt: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

func run(args *cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.Model.Name = args.Model
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info().Str("version", version).Msg("starting")

	store, err := storage.Open(cfg.History.DBPath, cfg.History.StorageLimitMB, log)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	engine := llm.NewEngine(llm.Config{
		ModelPath:   cfg.Model.Path,
		ModelName:   cfg.Model.Name,
		BaseURL:     cfg.Model.RuntimeURL,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		Autostart:   true,
	}, log)

	ctrl := session.NewController(store, engine, chatConfig(cfg), log)

	// A missing or unloadable model degrades the session instead of
	// aborting: history stays browsable and turns record a canned reply.
	loadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := engine.Load(loadCtx); err != nil {
		ctrl.SetDegraded(true)
		reportLoadFailure(cfg, err)
		log.Warn().Err(err).Msg("model unavailable, running degraded")
	}
	cancel()

	// Live reload: edits to config.toml retune generation without a
	// restart. Model and storage changes still need one.
	if path, err := config.PathTOML(); err == nil {
		if w, err := config.Watch(path, func(next *config.Config) {
			ctrl.Reconfigure(chatConfig(next))
			log.Info().Msg("config reloaded")
		}); err == nil {
			defer w.Close()
		}
	}

	app := &cli.App{Config: cfg, Store: store, Engine: engine, Ctrl: ctrl, Log: log}

	if args.Command == cli.CmdTUI {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			// Piped output: fall back to the line-oriented REPL.
			return app.RunChat(context.Background())
		}
		return runTUI(ctrl, store, cfg)
	}
	return app.Run(context.Background(), args)
}

func chatConfig(cfg *config.Config) session.Config {
	return session.Config{
		SystemPrompt: cfg.Chat.SystemPrompt,
		ContextTurns: cfg.Chat.ContextTurns,
		MaxTokens:    cfg.Model.MaxTokens,
		Temperature:  cfg.Model.Temperature,
	}
}

func runTUI(ctrl *session.Controller, store *storage.Store, cfg *config.Config) error {
	theme := styles.NewThemeFor(cfg.UI.Theme)
	m := chat.New(ctrl, store, theme, cfg.Model.Name, chat.Options{
		ShowTimestamps: cfg.UI.ShowTimestamps,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// reportLoadFailure tells the user why the model is unavailable in
// plain terms before the UI takes over.
func reportLoadFailure(cfg *config.Config, err error) {
	switch {
	case errors.Is(err, llm.ErrModelNotFound):
		fmt.Fprintf(os.Stderr, "offgpt: model weights not found at %s, starting without a model\n", cfg.Model.Path)
	case errors.Is(err, llm.ErrModelLoad):
		fmt.Fprintf(os.Stderr, "offgpt: model %q failed to load, starting without a model\n", cfg.Model.Name)
	default:
		fmt.Fprintf(os.Stderr, "offgpt: inference runtime unavailable, starting without a model\n")
	}
}

// =============================================================================
// LOGGING
// =============================================================================

// openLogger builds the file-backed zerolog logger. Logs go to a file
// rather than stderr so they never corrupt the TUI's screen.
func openLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	path := cfg.Log.Path
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		path = filepath.Join(dir, "offgpt.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return log, func() { f.Close() }, nil
}
