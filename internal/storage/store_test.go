// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), 500, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestCreateAndListConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateConversation(ctx, "Test Conversation")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty conversation id")
	}

	convs, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("conversation count = %d, want 1", len(convs))
	}
	if convs[0].ID != id || convs[0].Summary != "Test Conversation" {
		t.Errorf("got (%q, %q), want (%q, %q)", convs[0].ID, convs[0].Summary, id, "Test Conversation")
	}
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.CreateConversation(ctx, fmt.Sprintf("conv %d", i))
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		ids = append(ids, id)
	}

	convs, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("conversation count = %d, want 3", len(convs))
	}
	for i := range convs {
		want := ids[len(ids)-1-i]
		if convs[i].ID != want {
			t.Errorf("convs[%d].ID = %q, want %q", i, convs[i].ID, want)
		}
	}
}

func TestUpdateSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "old")
	if err := store.UpdateSummary(ctx, id, "new"); err != nil {
		t.Fatalf("UpdateSummary failed: %v", err)
	}

	conv, err := store.GetConversation(ctx, id)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if conv.Summary != "new" {
		t.Errorf("Summary = %q, want %q", conv.Summary, "new")
	}

	// Updating a missing conversation is a silent no-op.
	if err := store.UpdateSummary(ctx, "no-such-id", "x"); err != nil {
		t.Errorf("UpdateSummary on missing id should be a no-op, got %v", err)
	}
}

func TestDeleteConversation_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "doomed")
	if _, err := store.AppendTurn(ctx, id, "hi", "hello"); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	if err := store.DeleteConversation(ctx, id); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	convs, _ := store.ListConversations(ctx)
	if len(convs) != 0 {
		t.Errorf("conversation count = %d, want 0", len(convs))
	}

	// History after deletion is empty, not an error.
	turns, err := store.GetHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetHistory after delete should not error, got %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("turn count = %d, want 0", len(turns))
	}
}

// =============================================================================
// TURN TESTS
// =============================================================================

func TestAppendTurn_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "x")
	quota, err := store.AppendTurn(ctx, id, "hi", "hello")
	if err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	if quota == nil {
		t.Fatal("expected quota status")
	}
	if quota.Exceeded {
		t.Error("fresh store should not exceed quota")
	}

	turns, err := store.GetHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("turn count = %d, want 1", len(turns))
	}
	if turns[0].UserMessage != "hi" || turns[0].Response != "hello" {
		t.Errorf("turn = (%q, %q), want (%q, %q)",
			turns[0].UserMessage, turns[0].Response, "hi", "hello")
	}
	if turns[0].Timestamp.IsZero() {
		t.Error("timestamp should be assigned by the store")
	}
}

func TestAppendTurn_OrphanRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AppendTurn(context.Background(), "never-created", "hi", "hello")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestGetHistory_OrderPreserved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "ordered")
	for i := 0; i < 20; i++ {
		if _, err := store.AppendTurn(ctx, id, fmt.Sprintf("msg %d", i), fmt.Sprintf("reply %d", i)); err != nil {
			t.Fatalf("AppendTurn %d failed: %v", i, err)
		}
	}

	turns, err := store.GetHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(turns) != 20 {
		t.Fatalf("turn count = %d, want 20", len(turns))
	}
	for i, turn := range turns {
		if turn.UserMessage != fmt.Sprintf("msg %d", i) {
			t.Errorf("turns[%d].UserMessage = %q, want %q", i, turn.UserMessage, fmt.Sprintf("msg %d", i))
		}
	}
}

func TestRecentTurns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "windowed")
	for i := 0; i < 15; i++ {
		store.AppendTurn(ctx, id, fmt.Sprintf("msg %d", i), "r")
	}

	turns, err := store.RecentTurns(ctx, id, 10)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(turns) != 10 {
		t.Fatalf("turn count = %d, want 10", len(turns))
	}
	// Window holds the last 10 turns in chronological order.
	if turns[0].UserMessage != "msg 5" {
		t.Errorf("first windowed turn = %q, want %q", turns[0].UserMessage, "msg 5")
	}
	if turns[9].UserMessage != "msg 14" {
		t.Errorf("last windowed turn = %q, want %q", turns[9].UserMessage, "msg 14")
	}

	// Asking for more than exists returns everything.
	all, err := store.RecentTurns(ctx, id, 100)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(all) != 15 {
		t.Errorf("turn count = %d, want 15", len(all))
	}
}

func TestTurnCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "counted")
	count, err := store.TurnCount(ctx, id)
	if err != nil {
		t.Fatalf("TurnCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	store.AppendTurn(ctx, id, "hi", "hello")
	count, _ = store.TurnCount(ctx, id)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestClearHistory_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "cleared")
	store.AppendTurn(ctx, id, "hi", "hello")

	for i := 0; i < 2; i++ {
		if err := store.ClearHistory(ctx, id); err != nil {
			t.Fatalf("ClearHistory call %d failed: %v", i+1, err)
		}
		turns, _ := store.GetHistory(ctx, id)
		if len(turns) != 0 {
			t.Errorf("turn count after clear = %d, want 0", len(turns))
		}
	}

	// The conversation record itself survives.
	if _, err := store.GetConversation(ctx, id); err != nil {
		t.Errorf("conversation should survive ClearHistory, got %v", err)
	}
}

// =============================================================================
// QUOTA TESTS
// =============================================================================

func TestQuota_AdvisoryDoesNotBlockWrites(t *testing.T) {
	// 1 MB limit. SQLite page overhead alone puts a fresh database within
	// sight of it; large payloads push it over.
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	id, _ := store.CreateConversation(ctx, "big")

	big := make([]byte, 256*1024)
	for i := range big {
		big[i] = 'a'
	}

	var exceeded bool
	for i := 0; i < 8; i++ {
		quota, err := store.AppendTurn(ctx, id, string(big), string(big))
		if err != nil {
			t.Fatalf("AppendTurn %d failed: %v", i, err)
		}
		if quota.Exceeded {
			exceeded = true
			break
		}
	}
	if !exceeded {
		t.Fatal("expected quota to be exceeded")
	}

	// The next write still succeeds; the quota is advisory only.
	quota, err := store.AppendTurn(ctx, id, "still works", "yes")
	if err != nil {
		t.Fatalf("AppendTurn after quota exceeded failed: %v", err)
	}
	if !quota.Exceeded {
		t.Error("quota should still report exceeded")
	}

	turns, _ := store.GetHistory(ctx, id)
	if turns[len(turns)-1].UserMessage != "still works" {
		t.Error("post-quota write was not recorded")
	}
}
