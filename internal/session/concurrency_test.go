// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Concurrency tests for the controller: parallel turn submission
// across conversations and live retuning while turns are in flight.
package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSubmit_ParallelConversations runs concurrent turns on distinct
// conversations. Each must complete without tripping the per-conversation
// in-flight guard, and each must persist exactly its own turn.
func TestSubmit_ParallelConversations(t *testing.T) {
	fc := &fakeCompleter{reply: "<|assistant|>\nok\n<|end|>"}
	c, store := newTestController(t, fc)
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		id, err := c.NewConversation(ctx)
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Submit(ctx, ids[i], fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "conversation %d", i)
	}
	for i, id := range ids {
		turns, err := store.RecentTurns(ctx, id, 10)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		require.Equal(t, fmt.Sprintf("message %d", i), turns[0].UserMessage)
	}
}

// TestReconfigure_Concurrent retunes the controller while turns are
// running. No panics, no lost turns, and the final tuning wins.
func TestReconfigure_Concurrent(t *testing.T) {
	fc := &fakeCompleter{reply: "<|assistant|>\nok\n<|end|>"}
	c, _ := newTestController(t, fc)
	ctx := context.Background()

	id, err := c.NewConversation(ctx)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Reconfigure(Config{
				SystemPrompt: "retuned",
				ContextTurns: i%9 + 1,
				MaxTokens:    64,
			})
		}(i)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Submit(ctx, id, fmt.Sprintf("turn %d", i))
		}(i)
	}
	wg.Wait()

	// Overlapping turns on one conversation may be rejected; only the
	// busy error is acceptable.
	for i, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrConversationBusy, "turn %d", i)
		}
	}

	require.Equal(t, "retuned", c.tuning().SystemPrompt)
	require.Equal(t, 64, c.tuning().MaxTokens)
}

// TestSubmitAsync delivers the turn outcome on the channel and persists
// the turn just like the synchronous path.
func TestSubmitAsync(t *testing.T) {
	fc := &fakeCompleter{reply: "<|assistant|>\nasync ok\n<|end|>"}
	c, store := newTestController(t, fc)
	ctx := context.Background()

	id, err := c.NewConversation(ctx)
	require.NoError(t, err)

	out := <-c.SubmitAsync(ctx, id, "hello")
	require.NoError(t, out.Err)
	require.Equal(t, "async ok", out.Reply)
	require.NotNil(t, out.Quota)

	turns, err := store.RecentTurns(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	out = <-c.SubmitAsync(ctx, id, "   ")
	require.ErrorIs(t, out.Err, ErrEmptyMessage)
}

// TestReconfigure_ZeroWindowDefaults keeps the context window sane when
// a reload carries a zero value.
func TestReconfigure_ZeroWindowDefaults(t *testing.T) {
	c, _ := newTestController(t, &fakeCompleter{reply: "ok"})
	c.Reconfigure(Config{SystemPrompt: "x"})
	require.Equal(t, 10, c.tuning().ContextTurns)
}
