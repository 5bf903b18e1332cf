// internal/memory/store.go

// Package memory owns per-session conversation history. The store is an
// explicit dependency injected into the orchestrator, so the backing
// implementation (Redis with native TTL, or an in-process map with an
// explicit sweep) is swappable without touching orchestration logic.
package memory

import (
	"context"
	"errors"

	"insight-agents/internal/models"
)

var ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")

// Store is the conversation store contract. Appends are append-only and
// history never grows past the configured maximum turn count per session.
type Store interface {
	// Append records one turn and bumps the session's activity clock,
	// creating the session on first use.
	Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error

	// Recent returns up to n most recent turns in chronological order.
	Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error)

	// Touch refreshes the session's idle TTL without appending.
	Touch(ctx context.Context, sessionID string) error

	// Session returns the session record, or ErrSessionNotFound.
	Session(ctx context.Context, sessionID string) (*models.SessionRecord, error)

	// Clear drops the session and its history.
	Clear(ctx context.Context, sessionID string) error

	// ExpireIdle removes sessions idle past the TTL and reports how many
	// were dropped. TTL-native backends may always report 0.
	ExpireIdle(ctx context.Context) (int, error)
}
