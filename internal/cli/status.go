// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - System status command.
//
// Command: status
// Short:   Show model runtime and storage status
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/offgpt-tui/internal/ui/styles"
)

// RunStatus prints model, runtime, and storage health.
func (a *App) RunStatus(ctx context.Context) error {
	fmt.Println("offgpt status")
	fmt.Println()

	// Model
	if a.Engine.Loaded() {
		fmt.Println(styles.RenderSuccess("model " + a.Engine.ModelName() + " loaded"))
	} else {
		fmt.Println(styles.RenderError("model not loaded (degraded mode)"))
	}

	// Runtime
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Engine.CheckRunning(checkCtx); err != nil {
		fmt.Println(styles.RenderError("runtime unreachable: " + err.Error()))
	} else {
		fmt.Println(styles.RenderSuccess("runtime reachable"))
	}

	// Storage
	items, err := a.Store.ListConversations(ctx)
	if err != nil {
		return err
	}
	size := a.Store.Size()
	limit := int64(a.Config.History.StorageLimitMB) * 1024 * 1024
	line := fmt.Sprintf("storage: %d conversations, %.1f MB of %d MB",
		len(items), float64(size)/(1024*1024), a.Config.History.StorageLimitMB)
	if size > limit {
		fmt.Println(styles.RenderWarning(line + " (limit exceeded)"))
	} else {
		fmt.Println(styles.RenderInfo(line))
	}
	return nil
}
