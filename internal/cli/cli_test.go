// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want Command
	}{
		{"no args is TUI", nil, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"sessions", []string{"sessions", "list"}, CmdSessions},
		{"session alias", []string{"session"}, CmdSessions},
		{"config", []string{"config", "show"}, CmdConfig},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"bare words fall back to ask", []string{"what", "is", "go"}, CmdAsk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Parse(tt.raw)
			if args.Command != tt.want {
				t.Errorf("Parse(%v).Command = %v, want %v", tt.raw, args.Command, tt.want)
			}
		})
	}
}

func TestParseAskQuery(t *testing.T) {
	args := Parse([]string{"ask", "what", "is", "a", "goroutine"})
	if args.Query != "what is a goroutine" {
		t.Errorf("Query = %q, want joined words", args.Query)
	}

	args = Parse([]string{"what", "is", "go"})
	if args.Query != "what is go" {
		t.Errorf("fallback Query = %q, want %q", args.Query, "what is go")
	}
}

func TestParseModelFlag(t *testing.T) {
	args := Parse([]string{"ask", "--model", "phi-2", "hello"})
	if args.Model != "phi-2" {
		t.Errorf("Model = %q, want phi-2", args.Model)
	}
	if args.Query != "hello" {
		t.Errorf("Query = %q, want hello (flag must not leak in)", args.Query)
	}

	args = Parse([]string{"chat", "-m", "phi-2"})
	if args.Model != "phi-2" {
		t.Errorf("short flag Model = %q, want phi-2", args.Model)
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"delete", "4cbb", "--confirm", "--format=json", "--lines", "50"})

	if p.Subcommand() != "delete" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	if p.Positional(1) != "4cbb" {
		t.Errorf("Positional(1) = %q", p.Positional(1))
	}
	if !p.BoolFlag("confirm") {
		t.Error("BoolFlag(confirm) = false")
	}
	if p.Flag("format") != "json" {
		t.Errorf("Flag(format) = %q", p.Flag("format"))
	}
	if p.FlagIntOrDefault("lines", 10) != 50 {
		t.Errorf("FlagIntOrDefault(lines) = %d", p.FlagIntOrDefault("lines", 10))
	}
	if p.FlagIntOrDefault("missing", 10) != 10 {
		t.Errorf("FlagIntOrDefault(missing) = %d", p.FlagIntOrDefault("missing", 10))
	}
	if p.Positional(9) != "" {
		t.Errorf("out-of-range Positional = %q", p.Positional(9))
	}
}

func TestArgParserJoinFrom(t *testing.T) {
	p := NewArgParser([]string{"search", "error", "in", "production"})
	if got := p.JoinFrom(1); got != "error in production" {
		t.Errorf("JoinFrom(1) = %q", got)
	}
	if got := p.JoinFrom(10); got != "" {
		t.Errorf("JoinFrom(10) = %q", got)
	}
}
