// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "fmt"

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds the parsed invocation.
type Args struct {
	Command Command

	// Query is the free-form message for ask.
	Query string

	// Model overrides the configured model name.
	Model string

	// parser keeps the remaining subcommand arguments for handlers.
	parser *ArgParser
}

const usageText = `offgpt - offline LLM chat client

Everything runs locally: a small language model served by a local
runtime, with conversation history in a SQLite database under
~/.offgpt. No network beyond localhost.

Usage:
  offgpt                        Start the TUI (default)
  offgpt ask "question"         Ask a single question
  offgpt chat                   Interactive chat in the terminal
  offgpt sessions [subcommand]  Manage saved conversations
  offgpt config [subcommand]    Show or change configuration
  offgpt status                 Show model and storage status
  offgpt version                Show version
  offgpt help                   Show this help

Session Commands:
  offgpt sessions list              List all conversations
  offgpt sessions show <id>         Print a conversation transcript
  offgpt sessions delete <id>       Delete a conversation
    --confirm                       Required confirmation flag
  offgpt sessions clear <id>        Clear a conversation's history
    --confirm                       Required confirmation flag

Config Commands:
  offgpt config show                Show the active configuration
  offgpt config get <key>           Print one value (dot notation)
  offgpt config set <key> <value>   Change and persist one value
  offgpt config path                Print the config file location

Global Flags:
  -m, --model NAME    Use a specific model (overrides config)

Examples:
  offgpt ask "What is a goroutine?"
  offgpt config set chat.context_turns 4
  offgpt sessions delete 4cbb2a6e --confirm
`

// Parse interprets os.Args[1:].
func Parse(raw []string) *Args {
	args := &Args{Command: CmdTUI}
	if len(raw) == 0 {
		return args
	}

	cmd := raw[0]
	rest := raw[1:]

	switch cmd {
	case "ask":
		args.Command = CmdAsk
	case "chat":
		args.Command = CmdChat
	case "sessions", "session":
		args.Command = CmdSessions
	case "config":
		args.Command = CmdConfig
	case "status", "s":
		args.Command = CmdStatus
	case "version", "-v", "--version":
		args.Command = CmdVersion
	case "help", "-h", "--help":
		args.Command = CmdHelp
	default:
		// Unknown word: treat the whole line as an ask query.
		args.Command = CmdAsk
		rest = raw
	}

	args.parser = NewArgParser(rest)
	args.Model = args.parser.FlagOrDefault("model", args.parser.Flag("m"))

	if args.Command == CmdAsk {
		args.Query = args.parser.JoinFrom(0)
	}
	return args
}

// PrintUsage writes the top-level help text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information.
func PrintVersion() {
	fmt.Printf("offgpt %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
