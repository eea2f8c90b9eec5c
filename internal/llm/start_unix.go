// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package llm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// findRuntimeExecutable searches for the model runtime binary in PATH
// and common installation directories on Unix.
func findRuntimeExecutable() (string, error) {
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	possiblePaths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}

	if home := os.Getenv("HOME"); home != "" {
		possiblePaths = append(possiblePaths,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}

	// macOS application bundle location
	possiblePaths = append(possiblePaths,
		"/Applications/Ollama.app/Contents/Resources/ollama",
	)

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("model runtime not found in PATH or common installation directories. " +
		"Checked: PATH, /usr/local/bin, /usr/bin, ~/.local/bin")
}

// startRuntimeProcess launches the runtime in the background on
// Unix/macOS and polls until it answers or the deadline passes.
func (e *Engine) startRuntimeProcess(ctx context.Context) error {
	runtimePath, err := findRuntimeExecutable()
	if err != nil {
		return &RuntimeError{
			Type:    ErrTypeConnection,
			Message: "failed to find runtime executable",
			Cause:   err,
		}
	}

	cmd := exec.Command(runtimePath, "serve")

	// Pass environment through so GPU-related vars reach the runtime.
	cmd.Env = os.Environ()

	// New process group so the runtime outlives us.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return &RuntimeError{
			Type:    ErrTypeConnection,
			Message: fmt.Sprintf("failed to start runtime (path: %s)", runtimePath),
			Cause:   err,
		}
	}

	if cmd.Process != nil {
		if err := cmd.Process.Release(); err != nil {
			// Non-fatal: process started but release failed
		}
	}

	e.log.Info().Str("path", runtimePath).Msg("starting model runtime")

	deadline := time.Now().Add(10 * time.Second)
	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return &RuntimeError{
				Type:    ErrTypeConnection,
				Message: "runtime startup cancelled",
				Cause:   ctx.Err(),
			}
		default:
		}

		checkCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		lastErr = e.CheckRunning(checkCtx)
		cancel()

		if lastErr == nil {
			e.log.Info().Msg("model runtime started")
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return &RuntimeError{
		Type:    ErrTypeConnection,
		Message: fmt.Sprintf("runtime started but not responding after 10 seconds (path: %s)", runtimePath),
		Cause:   lastErr,
	}
}
