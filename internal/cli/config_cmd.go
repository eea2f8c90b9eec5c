// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands.
//
// Command: config
// Short:   Show or change configuration
//
// Examples:
//   offgpt config show
//   offgpt config get model.name
//   offgpt config set chat.context_turns 4
package cli

import (
	"fmt"

	"github.com/jeranaias/offgpt-tui/internal/config"
	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

// RunConfig dispatches the config subcommands.
func (a *App) RunConfig(p *ArgParser) error {
	switch p.Subcommand() {
	case "", "show":
		return a.configShow()
	case "get":
		return a.configGet(p.Positional(1))
	case "set":
		return a.configSet(p.Positional(1), p.Positional(2))
	case "path":
		path, err := config.PathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (try show, get, set, path)", p.Subcommand())
	}
}

func (a *App) configShow() error {
	for _, key := range config.Keys() {
		val, err := a.Config.Get(key)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %v\n", key, val)
	}
	return nil
}

func (a *App) configGet(key string) error {
	if key == "" {
		return fmt.Errorf("usage: offgpt config get <key>")
	}
	val, err := a.Config.Get(key)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", val)
	return nil
}

func (a *App) configSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: offgpt config set <key> <value>")
	}

	if err := a.Config.Set(key, value); err != nil {
		return err
	}

	path, err := config.PathTOML()
	if err != nil {
		return err
	}
	if err := config.SaveTOML(a.Config, path); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess(key + " updated"))
	return nil
}
