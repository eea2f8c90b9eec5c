// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Schema creates the conversation tables.
//
// Timestamps are unix nanoseconds assigned by the store at write time;
// history ordering is timestamp then rowid, so two turns written within
// the same clock tick still come back in insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	summary    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_history (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	timestamp       INTEGER NOT NULL,
	user_message    TEXT,
	llm_response    TEXT
);

CREATE INDEX IF NOT EXISTS idx_chat_history_conversation
	ON chat_history(conversation_id, timestamp);
`
