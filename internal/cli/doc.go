// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the offgpt command line surface: argument
// parsing, the one-shot ask command, the interactive chat REPL, and
// the sessions/config/status maintenance commands.
//
// The full-screen TUI lives in internal/ui; this package covers every
// invocation that is not the TUI, including terminals where the TUI
// cannot run.
package cli
