// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"strings"
	"testing"
)

func TestRenderFirstTurn(t *testing.T) {
	got := Render("You are helpful.", nil, "Hello")

	want := "<|system|>\nYou are helpful.\n<|end|>\n" +
		"<|user|>\nHello\n<|end|>\n" +
		"<|assistant|>\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderWithHistory(t *testing.T) {
	history := []Exchange{
		{User: "Hi", Assistant: "Hello! How can I help?"},
		{User: "What is Go?", Assistant: "A programming language."},
	}
	got := Render("Be brief.", history, "Thanks")

	// History must appear oldest first, between system and the new message.
	hiIdx := strings.Index(got, "Hi\n")
	goIdx := strings.Index(got, "What is Go?\n")
	thanksIdx := strings.Index(got, "Thanks\n")
	if hiIdx < 0 || goIdx < 0 || thanksIdx < 0 {
		t.Fatalf("Render() missing expected content:\n%s", got)
	}
	if !(hiIdx < goIdx && goIdx < thanksIdx) {
		t.Errorf("history out of order: hi=%d go=%d thanks=%d", hiIdx, goIdx, thanksIdx)
	}
}

func TestRenderTrailingAssistantMarker(t *testing.T) {
	got := Render("", nil, "Hello")
	if !strings.HasSuffix(got, MarkerAssistant+"\n") {
		t.Errorf("Render() must end with an open assistant marker, got %q", got)
	}
	// No system section when the system prompt is empty.
	if strings.Contains(got, MarkerSystem) {
		t.Errorf("Render() with empty system prompt must omit the system section:\n%s", got)
	}
}

func TestRenderSectionsClosed(t *testing.T) {
	got := Render("sys", []Exchange{{User: "u", Assistant: "a"}}, "q")

	// Every section except the trailing open assistant is closed.
	// sys + u + a + q = 4 closed sections.
	if n := strings.Count(got, MarkerEnd); n != 4 {
		t.Errorf("Render() closed %d sections, want 4:\n%s", n, got)
	}
}

func TestStopSequences(t *testing.T) {
	stops := StopSequences()
	if len(stops) == 0 {
		t.Fatal("StopSequences() returned nothing")
	}
	found := false
	for _, s := range stops {
		if s == MarkerEnd {
			found = true
		}
	}
	if !found {
		t.Errorf("StopSequences() = %v, must include %q", stops, MarkerEnd)
	}
}

func TestTruncateAtAny(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		stops []string
		want  string
	}{
		{"no stop present", "hello world", []string{MarkerEnd}, "hello world"},
		{"stop mid-string", "hello<|end|>garbage", []string{MarkerEnd}, "hello"},
		{"earliest stop wins", "a<|user|>b<|end|>c", []string{MarkerEnd, MarkerUser}, "a"},
		{"trims whitespace", "  hi \n<|end|>", []string{MarkerEnd}, "hi"},
		{"empty stops ignored", "hi", []string{""}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateAtAny(tt.in, tt.stops); got != tt.want {
				t.Errorf("truncateAtAny(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
