// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Sentinel errors for the gateway lifecycle.
var (
	// ErrModelNotFound means the model weights file does not exist on disk.
	ErrModelNotFound = errors.New("model weights not found")

	// ErrModelLoad means the weights exist but the runtime could not
	// register or warm up the model.
	ErrModelLoad = errors.New("model failed to load")

	// ErrNotLoaded means Complete was called before a successful Load.
	ErrNotLoaded = errors.New("model not loaded")
)

// RuntimeError represents a transport-level error from the model runtime.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes runtime errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel runtime errors for easy checking.
var (
	ErrNotRunning = &RuntimeError{Type: ErrTypeNotRunning, Message: "model runtime is not running"}
	ErrTimeout    = &RuntimeError{Type: ErrTypeTimeout, Message: "runtime request timed out"}
)

// NotAvailableReply is the canned assistant reply used when the engine
// never loaded and the application is running in degraded mode.
const NotAvailableReply = "[LLM not available]"

// ErrorText renders a generation failure as the bracketed sentinel
// string recorded in the transcript in place of a real reply.
func ErrorText(err error) string {
	return "[LLM error: " + err.Error() + "]"
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the gateway configuration.
type Config struct {
	// ModelPath is the on-disk weights file verified by Load.
	ModelPath string

	// ModelName is the model identifier registered with the runtime.
	ModelName string

	// BaseURL is the runtime API base URL (default: http://127.0.0.1:11434).
	// Uses explicit IPv4 instead of localhost to avoid IPv6 resolution
	// issues on Windows.
	BaseURL string

	// MaxTokens caps generation length per reply (default: 256).
	MaxTokens int

	// Temperature is the sampling temperature (default: 0.7).
	Temperature float64

	// Timeout for control-plane requests; generation requests are
	// bounded only by their context (default: 30s).
	Timeout time.Duration

	// Autostart launches the runtime process when it is not reachable.
	Autostart bool
}

// fillDefaults replaces zero values with defaults.
func (c *Config) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://127.0.0.1:11434"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 256
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// =============================================================================
// COMPLETER
// =============================================================================

// Options carries per-request sampling parameters.
type Options struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Completer is the minimal completion surface the session layer
// depends on.
type Completer interface {
	// Complete generates text for a fully rendered prompt. After a
	// successful Load the only error it returns is ErrNotLoaded;
	// generation failures come back as sentinel text, not errors.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine talks to a local Ollama-compatible runtime over HTTP.
// It is safe for concurrent use.
type Engine struct {
	cfg        Config
	httpClient *http.Client
	loaded     atomic.Bool
	log        zerolog.Logger
}

// Interface check.
var _ Completer = (*Engine)(nil)

// NewEngine creates a gateway for the given model. The engine starts
// unloaded; call Load before Complete.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	cfg.fillDefaults()
	return &Engine{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.With().Str("component", "llm").Logger(),
	}
}

// Loaded reports whether a Load has succeeded.
func (e *Engine) Loaded() bool {
	return e.loaded.Load()
}

// ModelName returns the configured model identifier.
func (e *Engine) ModelName() string {
	return e.cfg.ModelName
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the runtime is reachable.
func (e *Engine) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL, nil)
	if err != nil {
		return &RuntimeError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RuntimeError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from runtime: " + resp.Status,
		}
	}

	return nil
}

// EnsureRunning checks the runtime and, when autostart is enabled,
// launches it if unreachable. The actual start logic is
// platform-specific (see start_unix.go and start_windows.go).
func (e *Engine) EnsureRunning(ctx context.Context) error {
	if err := e.CheckRunning(ctx); err == nil {
		return nil
	}
	if !e.cfg.Autostart {
		return ErrNotRunning
	}
	return e.startRuntimeProcess(ctx)
}

// =============================================================================
// LOAD
// =============================================================================

// Load makes the model ready for completion. It verifies the weights
// exist on disk, ensures the runtime is reachable, confirms the model
// is registered, and runs a warm-up generation so the first user
// request does not pay the load cost.
//
// Load is idempotent; loading an already loaded model is a no-op.
func (e *Engine) Load(ctx context.Context) error {
	if e.loaded.Load() {
		return nil
	}

	if _, err := os.Stat(e.cfg.ModelPath); err != nil {
		return fmt.Errorf("%w: %s", ErrModelNotFound, e.cfg.ModelPath)
	}

	if err := e.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("%w: runtime unavailable: %v", ErrModelLoad, err)
	}

	if err := e.showModel(ctx); err != nil {
		return err
	}

	if err := e.warmUp(ctx); err != nil {
		return fmt.Errorf("%w: warm-up failed: %v", ErrModelLoad, err)
	}

	e.loaded.Store(true)
	e.log.Info().
		Str("model", e.cfg.ModelName).
		Str("path", e.cfg.ModelPath).
		Msg("model loaded")
	return nil
}

// showModel confirms the model is registered with the runtime.
func (e *Engine) showModel(ctx context.Context) error {
	body, err := json.Marshal(ShowRequest{Name: e.cfg.ModelName})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/show", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: model %q not registered with runtime", ErrModelLoad, e.cfg.ModelName)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: show request failed: %s", ErrModelLoad, resp.Status)
	}

	var result ShowResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode show response: %v", ErrModelLoad, err)
	}
	return nil
}

// warmUp issues an empty generation so the runtime pages the weights
// into memory now rather than on the first user turn.
func (e *Engine) warmUp(ctx context.Context) error {
	_, err := e.generate(ctx, GenerateRequest{
		Model:  e.cfg.ModelName,
		Prompt: "",
		Raw:    true,
		Stream: false,
	})
	return err
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete generates text for a rendered prompt. Generation failures
// are absorbed into a sentinel reply; see Completer.
func (e *Engine) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if !e.loaded.Load() {
		return "", ErrNotLoaded
	}

	if opts.MaxTokens == 0 {
		opts.MaxTokens = e.cfg.MaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = e.cfg.Temperature
	}

	resp, err := e.generate(ctx, GenerateRequest{
		Model:  e.cfg.ModelName,
		Prompt: prompt,
		Raw:    true,
		Stream: false,
		Options: &GenerateOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.Stop,
		},
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("generation failed")
		return ErrorText(err), nil
	}

	// Some runtimes honor stop sequences loosely; enforce them here so
	// the reply never carries a trailing role marker.
	return truncateAtAny(resp.Response, opts.Stop), nil
}

// generate posts a non-streaming generation request. Generation is
// bounded only by ctx, not the control-plane timeout.
func (e *Engine) generate(ctx context.Context, reqBody GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &RuntimeError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	genClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &RuntimeError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := genClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var rtErr runtimeError
		if err := json.NewDecoder(resp.Body).Decode(&rtErr); err == nil && rtErr.Error != "" {
			return nil, &RuntimeError{Type: ErrTypeInvalidResponse, Message: rtErr.Error}
		}
		return nil, &RuntimeError{
			Type:    ErrTypeInvalidResponse,
			Message: "generate request failed: " + resp.Status,
		}
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &RuntimeError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// IsNotRunning checks if an error indicates the runtime is unreachable.
func IsNotRunning(err error) bool {
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return rtErr.Type == ErrTypeNotRunning
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return rtErr.Type == ErrTypeTimeout
	}
	return false
}
