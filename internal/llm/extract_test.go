// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import "testing"

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "echoed marker then reply then fabricated turn",
			raw:  "<|assistant|>\nSure, I can help.\n<|user|>\nNext question",
			want: "Sure, I can help.",
		},
		{
			name: "marker only",
			raw:  "<|assistant|>\n",
			want: "",
		},
		{
			name: "clean reply",
			raw:  "The answer is 42.",
			want: "The answer is 42.",
		},
		{
			name: "leading blank lines",
			raw:  "\n\n  \nHere you go.",
			want: "Here you go.",
		},
		{
			name: "marker embedded mid-line",
			raw:  "Done.<|end|>\nextra",
			want: "Done.",
		},
		{
			name: "reply on same line as marker",
			raw:  "<|assistant|>Hello there",
			want: "Hello there",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "whitespace only",
			raw:  "   \n\t\n",
			want: "",
		},
		{
			name: "system marker echoed first",
			raw:  "<|system|>\n<|assistant|>\nFine, thanks.",
			want: "Fine, thanks.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractReply(tt.raw); got != tt.want {
				t.Errorf("ExtractReply(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractReplyIsPure(t *testing.T) {
	raw := "<|assistant|>\nStable output.\n"
	first := ExtractReply(raw)
	for i := 0; i < 3; i++ {
		if got := ExtractReply(raw); got != first {
			t.Fatalf("ExtractReply not deterministic: %q vs %q", got, first)
		}
	}
}
