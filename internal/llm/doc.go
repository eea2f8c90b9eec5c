// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm is the inference gateway: it mediates between the chat
// application and a locally hosted language model served by an
// Ollama-compatible runtime.
//
// # Lifecycle
//
// An Engine starts unloaded. Load verifies the model weights exist on
// disk, starts the runtime if it is not already running, registers the
// model and runs a warm-up generation. Until Load succeeds, Complete
// fails with ErrNotLoaded and the application runs in degraded mode.
//
// # Completion
//
// Complete sends a fully rendered prompt to the runtime and returns the
// raw generated text. Generation failures after a successful load do
// not surface as errors: the gateway substitutes a bracketed sentinel
// string ("[LLM error: ...]") so the conversation transcript always
// records something for the turn.
//
// # Prompt grammar
//
// Render builds prompts in a fixed role-marker grammar
// (<|system|>, <|user|>, <|assistant|>, <|end|>) and ExtractReply
// recovers the assistant's reply from raw model output that may echo
// those markers back.
package llm
