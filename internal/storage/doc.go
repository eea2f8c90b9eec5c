// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable conversation persistence for offgpt.
//
// Conversations and their turns are stored in a local SQLite database
// using the pure-Go modernc.org/sqlite driver.
//
// # Key Types
//
//   - Store: the conversation store, safe for concurrent use
//   - Conversation: a conversation row (id, summary, created_at)
//   - Turn: one user message / assistant reply pair
//   - QuotaStatus: advisory on-disk size report after each append
//
// # Usage
//
// Open a store and record a turn:
//
//	store, err := storage.Open(dbPath, 500, logger)
//	id, err := store.CreateConversation(ctx, "New conversation")
//	quota, err := store.AppendTurn(ctx, id, "hi", "hello")
//
// # Quota
//
// The store never blocks or prunes on its own. After each successful
// append it reports the on-disk size; callers decide whether to warn
// the user when QuotaStatus.Exceeded is set.
package storage
