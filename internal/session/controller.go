// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/jeranaias/offgpt-tui/internal/llm"
	"github.com/jeranaias/offgpt-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage means the user message was empty or whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrConversationBusy means a turn is already in flight for the
	// conversation.
	ErrConversationBusy = errors.New("conversation has a turn in flight")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Store is the persistence surface the controller needs. *storage.Store
// satisfies it.
type Store interface {
	CreateConversation(ctx context.Context, summary string) (string, error)
	GetConversation(ctx context.Context, id string) (*storage.Conversation, error)
	UpdateSummary(ctx context.Context, id, summary string) error
	TurnCount(ctx context.Context, conversationID string) (int, error)
	RecentTurns(ctx context.Context, conversationID string, n int) ([]storage.Turn, error)
	AppendTurn(ctx context.Context, conversationID, userMessage, response string) (*storage.QuotaStatus, error)
}

// Config holds per-turn generation settings.
type Config struct {
	// SystemPrompt opens every rendered prompt.
	SystemPrompt string

	// ContextTurns is how many prior exchanges accompany a new message
	// (default: 10).
	ContextTurns int

	// MaxTokens and Temperature are passed through to the gateway;
	// zero values defer to the gateway's configuration.
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a submitted turn.
type Result struct {
	// Reply is the assistant text recorded in the transcript. It may
	// be a bracketed sentinel when generation failed, or empty when
	// nothing usable could be extracted.
	Reply string

	// Quota reflects storage usage after the turn was persisted.
	// Quota.Exceeded is advisory; the turn was recorded regardless.
	Quota *storage.QuotaStatus
}

// Controller runs chat turns against a store and a completer.
// It is safe for concurrent use.
type Controller struct {
	store     Store
	completer llm.Completer
	cfg       Config
	degraded  atomic.Bool
	log       zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewController creates a session controller.
func NewController(store Store, completer llm.Completer, cfg Config, log zerolog.Logger) *Controller {
	if cfg.ContextTurns == 0 {
		cfg.ContextTurns = 10
	}
	return &Controller{
		store:     store,
		completer: completer,
		cfg:       cfg,
		log:       log.With().Str("component", "session").Logger(),
		inflight:  make(map[string]struct{}),
	}
}

// SetDegraded switches the controller into or out of degraded mode.
// Degraded turns skip the gateway and record a canned reply.
func (c *Controller) SetDegraded(v bool) {
	c.degraded.Store(v)
}

// Degraded reports whether the controller is running without a model.
func (c *Controller) Degraded() bool {
	return c.degraded.Load()
}

// Reconfigure swaps the generation settings. In-flight turns keep the
// settings they started with.
func (c *Controller) Reconfigure(cfg Config) {
	if cfg.ContextTurns == 0 {
		cfg.ContextTurns = 10
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

func (c *Controller) tuning() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// NewConversation starts a fresh conversation with an empty summary
// and returns its id.
func (c *Controller) NewConversation(ctx context.Context) (string, error) {
	return c.store.CreateConversation(ctx, "")
}

// =============================================================================
// TURN SUBMISSION
// =============================================================================

// Submit runs one full chat turn for the conversation: validate,
// summarize on first turn, render context, complete, extract, persist.
// The message is trimmed before any of that; a whitespace-only message
// fails with ErrEmptyMessage and touches nothing.
//
// Only one turn may be in flight per conversation; a second concurrent
// Submit fails with ErrConversationBusy.
func (c *Controller) Submit(ctx context.Context, conversationID, message string) (*Result, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	if !c.acquire(conversationID) {
		return nil, ErrConversationBusy
	}
	defer c.release(conversationID)

	conv, err := c.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// The first recorded turn names the conversation, regardless of any
	// summary it was created with.
	count, err := c.store.TurnCount(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := c.store.UpdateSummary(ctx, conv.ID, DeriveSummary(trimmed)); err != nil {
			return nil, err
		}
	}

	reply := c.generate(ctx, conv.ID, trimmed)

	quota, err := c.store.AppendTurn(ctx, conv.ID, trimmed, reply)
	if err != nil {
		return nil, err
	}
	if quota != nil && quota.Exceeded {
		c.log.Warn().
			Str("conversation", conv.ID).
			Int64("size", quota.SizeBytes).
			Int64("limit", quota.LimitBytes).
			Msg("storage limit exceeded")
	}

	return &Result{Reply: reply, Quota: quota}, nil
}

// Outcome is the delivered result of an asynchronous turn. Exactly one
// of Err or the Reply/Quota pair is meaningful.
type Outcome struct {
	Reply string
	Quota *storage.QuotaStatus
	Err   error
}

// SubmitAsync runs Submit on its own goroutine and delivers the outcome
// on the returned channel. The channel is buffered so the outcome is
// never lost to a slow receiver.
func (c *Controller) SubmitAsync(ctx context.Context, conversationID, message string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		res, err := c.Submit(ctx, conversationID, message)
		if err != nil {
			ch <- Outcome{Err: err}
			return
		}
		ch <- Outcome{Reply: res.Reply, Quota: res.Quota}
	}()
	return ch
}

// generate produces the assistant text for a turn. It never fails:
// degraded mode and gateway errors both collapse into sentinel text so
// the exchange is always recordable.
func (c *Controller) generate(ctx context.Context, conversationID, message string) string {
	if c.degraded.Load() {
		return llm.NotAvailableReply
	}
	cfg := c.tuning()

	history, err := c.recentExchanges(ctx, conversationID, cfg.ContextTurns)
	if err != nil {
		c.log.Warn().Err(err).Msg("context window unavailable, proceeding without history")
	}

	prompt := llm.Render(cfg.SystemPrompt, history, message)
	raw, err := c.completer.Complete(ctx, prompt, llm.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Stop:        llm.StopSequences(),
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotLoaded) {
			return llm.NotAvailableReply
		}
		return llm.ErrorText(err)
	}

	return llm.ExtractReply(raw)
}

// recentExchanges loads the context window, oldest first.
func (c *Controller) recentExchanges(ctx context.Context, conversationID string, n int) ([]llm.Exchange, error) {
	turns, err := c.store.RecentTurns(ctx, conversationID, n)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Exchange, 0, len(turns))
	for _, t := range turns {
		history = append(history, llm.Exchange{
			User:      t.UserMessage,
			Assistant: t.Response,
		})
	}
	return history, nil
}

// =============================================================================
// IN-FLIGHT TRACKING
// =============================================================================

func (c *Controller) acquire(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[conversationID]; busy {
		return false
	}
	c.inflight[conversationID] = struct{}{}
	return true
}

func (c *Controller) release(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, conversationID)
}
