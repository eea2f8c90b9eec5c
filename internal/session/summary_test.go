// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "testing"

func TestDeriveSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "exactly five tokens kept",
			in:   "Hello there how are you doing today friend",
			want: "Hello there how are you",
		},
		{
			name: "short message unchanged",
			in:   "Hi",
			want: "Hi",
		},
		{
			name: "whitespace collapsed",
			in:   "  what \t is\n  Go  ",
			want: "what is Go",
		},
		{
			name: "long summary truncated with ellipsis",
			in:   "supercalifragilisticexpialidocious antidisestablishmentarianism",
			want: "supercalifragilisticexpiali...",
		},
		{
			name: "empty message",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSummary(tt.in)
			if got != tt.want {
				t.Errorf("DeriveSummary(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len([]rune(got)) > summaryMaxLen {
				t.Errorf("summary %q exceeds %d characters", got, summaryMaxLen)
			}
		})
	}
}
