// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

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

// Windows-specific creation flags
const (
	// CREATE_NO_WINDOW prevents a console window from being created
	CREATE_NO_WINDOW = 0x08000000
	// DETACHED_PROCESS creates a new process that is detached from the console
	DETACHED_PROCESS = 0x00000008
)

// findRuntimeExecutable searches for the model runtime binary in PATH
// and common installation directories on Windows.
func findRuntimeExecutable() (string, error) {
	if path, err := exec.LookPath("ollama.exe"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	possiblePaths := []string{}

	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		possiblePaths = append(possiblePaths, filepath.Join(localAppData, "Programs", "Ollama", "ollama.exe"))
	}

	possiblePaths = append(possiblePaths,
		`C:\Program Files\Ollama\ollama.exe`,
		`C:\Program Files (x86)\Ollama\ollama.exe`,
	)

	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		possiblePaths = append(possiblePaths,
			filepath.Join(userProfile, "Ollama", "ollama.exe"),
			filepath.Join(userProfile, ".ollama", "ollama.exe"),
		)
	}

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("ollama.exe not found in PATH or common installation directories. " +
		"Checked: PATH, %%LOCALAPPDATA%%\\Programs\\Ollama, C:\\Program Files\\Ollama")
}

// startRuntimeProcess launches the runtime in the background on
// Windows and polls until it answers or the deadline passes. Startup
// is slower here, especially on first launch, so the deadline is
// longer than on Unix.
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

	// Detach from the console and run in a fresh process group so the
	// runtime outlives us and no window appears.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | CREATE_NO_WINDOW | DETACHED_PROCESS,
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

	deadline := time.Now().Add(15 * time.Second)
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

		checkCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
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
		Message: fmt.Sprintf("runtime started but not responding after 15 seconds (path: %s)", runtimePath),
		Cause:   lastErr,
	}
}
