// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates a chat turn end to end: validate the
// user message, derive a conversation summary on the first turn,
// assemble the context window, call the inference gateway, extract the
// reply, and persist the completed exchange.
//
// A Controller allows one in-flight turn per conversation. Concurrent
// submissions against the same conversation fail fast with
// ErrConversationBusy; different conversations proceed independently.
//
// When the model never loaded the controller runs degraded: turns are
// still validated and recorded, with a canned unavailability reply in
// place of generated text.
package session
