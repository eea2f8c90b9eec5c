// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation id does not
	// exist, including appends that would otherwise orphan a turn.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrStorageLimitExceeded reports that the history database has grown
	// past the configured quota. It is advisory: the write that triggered
	// it has already succeeded.
	ErrStorageLimitExceeded = errors.New("storage limit exceeded")
)

// =============================================================================
// TYPES
// =============================================================================

// Conversation is a conversation row.
type Conversation struct {
	ID        string
	Summary   string
	CreatedAt time.Time
}

// Turn is one recorded user/assistant exchange.
type Turn struct {
	ID             int64
	ConversationID string
	Timestamp      time.Time
	UserMessage    string
	Response       string
}

// QuotaStatus reports the on-disk size of the store after a write.
type QuotaStatus struct {
	SizeBytes  int64
	LimitBytes int64
	Exceeded   bool
}

// Err returns ErrStorageLimitExceeded when the quota is exceeded, nil
// otherwise. The error is advisory; no write is ever rejected for it.
func (q *QuotaStatus) Err() error {
	if q != nil && q.Exceeded {
		return ErrStorageLimitExceeded
	}
	return nil
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed conversation store.
//
// Writes are serialized through a single mutex and a single pooled
// connection; SQLite supports one writer at a time and this workload
// never needs more.
type Store struct {
	db         *sql.DB
	path       string
	limitBytes int64
	mu         sync.Mutex
	log        zerolog.Logger
}

// Open opens (creating if necessary) the history database at path.
// limitMB is the advisory storage quota in megabytes.
func Open(path string, limitMB int, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps the pragmas below in force for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{
		db:         db,
		path:       path,
		limitBytes: int64(limitMB) * 1024 * 1024,
		log:        log.With().Str("component", "storage").Logger(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// CreateConversation inserts a new conversation with a fresh random
// identity and returns that identity.
func (s *Store) CreateConversation(ctx context.Context, summary string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UTC().UnixNano()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, summary, created_at) VALUES (?, ?, ?)",
		id, summary, now)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}

	s.log.Debug().Str("conversation_id", id).Msg("conversation created")
	return id, nil
}

// ListConversations returns all conversations, most recently created first.
func (s *Store) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, summary, created_at FROM conversations ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}
	return convs, nil
}

// GetConversation returns a single conversation by id.
func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, summary, created_at FROM conversations WHERE id = ?", id).
		Scan(&c.ID, &c.Summary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	return &c, nil
}

// UpdateSummary overwrites a conversation's summary. Updating a missing
// conversation is a no-op, mirroring an UPDATE that affects zero rows.
func (s *Store) UpdateSummary(ctx context.Context, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return nil
}

// DeleteConversation removes a conversation and every turn that belongs
// to it. The delete is transactional: both disappear or neither does.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chat_history WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.log.Debug().Str("conversation_id", id).Msg("conversation deleted")
	return nil
}

// =============================================================================
// TURN OPERATIONS
// =============================================================================

// AppendTurn records one user/assistant exchange against a conversation.
// The timestamp is assigned here, never by the caller. Appending to a
// conversation that does not exist fails with ErrConversationNotFound.
//
// The returned QuotaStatus is a post-write advisory; a nil error with
// QuotaStatus.Exceeded set means the write succeeded but the store has
// outgrown its quota.
func (s *Store) AppendTurn(ctx context.Context, conversationID, userMessage, response string) (*QuotaStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return nil, ErrConversationNotFound
	}

	now := time.Now().UTC().UnixNano()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO chat_history (conversation_id, timestamp, user_message, llm_response) VALUES (?, ?, ?, ?)",
		conversationID, now, userMessage, response)
	if err != nil {
		return nil, fmt.Errorf("failed to append turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit turn: %w", err)
	}

	return s.checkQuota(), nil
}

// GetHistory returns every turn of a conversation, oldest first.
// A missing or empty conversation yields an empty slice, not an error.
func (s *Store) GetHistory(ctx context.Context, conversationID string) ([]Turn, error) {
	return s.queryTurns(ctx,
		`SELECT id, conversation_id, timestamp, user_message, llm_response
		 FROM chat_history WHERE conversation_id = ?
		 ORDER BY timestamp ASC, id ASC`, conversationID)
}

// RecentTurns returns the last n turns of a conversation, oldest first.
func (s *Store) RecentTurns(ctx context.Context, conversationID string, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	turns, err := s.queryTurns(ctx,
		`SELECT id, conversation_id, timestamp, user_message, llm_response
		 FROM chat_history WHERE conversation_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, conversationID, n)
	if err != nil {
		return nil, err
	}
	// The query walks backwards from the newest turn; callers want
	// chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// TurnCount returns how many turns a conversation has.
func (s *Store) TurnCount(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM chat_history WHERE conversation_id = ?", conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return count, nil
}

// ClearHistory deletes all turns of a conversation but keeps the
// conversation itself. Safe to call on an already-empty conversation.
func (s *Store) ClearHistory(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chat_history WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Store) queryTurns(ctx context.Context, query string, args ...interface{}) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		var ts int64
		var userMsg, resp sql.NullString
		if err := rows.Scan(&t.ID, &t.ConversationID, &ts, &userMsg, &resp); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Timestamp = time.Unix(0, ts).UTC()
		t.UserMessage = userMsg.String
		t.Response = resp.String
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return turns, nil
}

// =============================================================================
// QUOTA
// =============================================================================

// Size returns the current on-disk size of the store in bytes,
// including the WAL file.
func (s *Store) Size() int64 {
	var total int64
	for _, p := range []string{s.path, s.path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

// checkQuota computes the post-write quota status. The store never
// prunes on its own; deleting old conversations is a user decision.
func (s *Store) checkQuota() *QuotaStatus {
	status := &QuotaStatus{
		SizeBytes:  s.Size(),
		LimitBytes: s.limitBytes,
	}
	status.Exceeded = status.SizeBytes > status.LimitBytes
	if status.Exceeded {
		s.log.Warn().
			Int64("size_bytes", status.SizeBytes).
			Int64("limit_bytes", status.LimitBytes).
			Msg("history store exceeds storage quota")
	}
	return status
}
