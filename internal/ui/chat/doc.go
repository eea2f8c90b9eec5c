// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view for the TUI.
//
// # Layout
//
// The view is a sidebar of conversations next to a scrollable
// transcript, with a single-line input below and a status bar at the
// bottom. Assistant replies render as markdown via glamour.
//
// # Concurrency
//
// Turn submission runs as a Bubble Tea command: the controller call
// happens off the update loop and its outcome comes back as a
// replyMsg. While a turn is in flight the input stays visible but
// further sends are refused, mirroring the controller's own
// per-conversation lock.
package chat
