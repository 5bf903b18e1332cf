// internal/memory/inmemory.go
package memory

import (
	"context"
	"sync"
	"time"

	"insight-agents/internal/models"
)

// InMemoryStore is the volatile fallback when Redis is not configured. It has
// no native TTL, so idle sessions linger until ExpireIdle sweeps them.
type InMemoryStore struct {
	mu         sync.RWMutex
	turns      map[string][]models.ConversationTurn
	sessions   map[string]*models.SessionRecord
	maxHistory int
	ttl        time.Duration
}

func NewInMemoryStore(maxHistory int, ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		turns:      make(map[string][]models.ConversationTurn),
		sessions:   make(map[string]*models.SessionRecord),
		maxHistory: maxHistory,
		ttl:        ttl,
	}
}

func (s *InMemoryStore) Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.turns[sessionID], turn)
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.turns[sessionID] = history

	s.bumpLocked(sessionID, true)
	return nil
}

func (s *InMemoryStore) Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.turns[sessionID]
	if n <= 0 || len(history) == 0 {
		return nil, nil
	}
	if n > len(history) {
		n = len(history)
	}

	out := make([]models.ConversationTurn, n)
	copy(out, history[len(history)-n:])
	return out, nil
}

func (s *InMemoryStore) Touch(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bumpLocked(sessionID, false)
	return nil
}

func (s *InMemoryStore) Session(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemoryStore) ExpireIdle(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.ttl)
	expired := 0
	for id, rec := range s.sessions {
		if rec.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.turns, id)
			expired++
		}
	}
	return expired, nil
}

func (s *InMemoryStore) bumpLocked(sessionID string, countTurn bool) {
	now := time.Now().UTC()
	rec, ok := s.sessions[sessionID]
	if !ok {
		rec = &models.SessionRecord{
			SessionID: sessionID,
			CreatedAt: now,
		}
		s.sessions[sessionID] = rec
	}
	rec.LastActivity = now
	if countTurn {
		rec.TurnCount++
	}
}
