// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"

	"github.com/jeranaias/offgpt-tui/internal/storage"
)

func TestTranscriptFromTurns(t *testing.T) {
	first := time.Now()
	second := first.Add(time.Second)
	turns := []storage.Turn{
		{UserMessage: "hi", Response: "hello", Timestamp: first},
		{UserMessage: "how are you", Response: "fine", Timestamp: second},
	}

	msgs := transcriptFromTurns(turns)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}

	wantRoles := []Role{RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	wantContent := []string{"hi", "hello", "how are you", "fine"}
	wantTimes := []time.Time{first, first, second, second}
	for i, msg := range msgs {
		if msg.Role != wantRoles[i] {
			t.Errorf("message %d role = %v, want %v", i, msg.Role, wantRoles[i])
		}
		if msg.Content != wantContent[i] {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, wantContent[i])
		}
		if !msg.Time.Equal(wantTimes[i]) {
			t.Errorf("message %d time = %v, want %v", i, msg.Time, wantTimes[i])
		}
	}
}

func TestTranscriptFromTurnsEmpty(t *testing.T) {
	if msgs := transcriptFromTurns(nil); len(msgs) != 0 {
		t.Errorf("got %d messages for empty history, want 0", len(msgs))
	}
}
