// internal/memory/redis.go
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"insight-agents/internal/models"
)

// RedisStore keeps history in Redis lists and session records in plain keys,
// both under the idle TTL so Redis expires abandoned sessions on its own.
type RedisStore struct {
	client     *redis.Client
	maxHistory int
	ttl        time.Duration
}

func NewRedisStore(client *redis.Client, maxHistory int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:     client,
		maxHistory: maxHistory,
		ttl:        ttl,
	}
}

func sessionKey(id string) string      { return "session:" + id }
func conversationKey(id string) string { return "conversation:" + id }

func (s *RedisStore) Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := conversationKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.maxHistory), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	return s.bumpSession(ctx, sessionID, true)
}

func (s *RedisStore) Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, conversationKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue // skip corrupt entries rather than failing the request
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string) error {
	return s.bumpSession(ctx, sessionID, false)
}

func (s *RedisStore) Session(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var rec models.SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID), conversationKey(sessionID)).Err()
}

// ExpireIdle is a no-op for Redis: key TTLs already evict idle sessions.
func (s *RedisStore) ExpireIdle(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) bumpSession(ctx context.Context, sessionID string, countTurn bool) error {
	now := time.Now().UTC()

	rec, err := s.Session(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		rec = &models.SessionRecord{
			SessionID: sessionID,
			CreatedAt: now,
		}
	} else if err != nil {
		return err
	}

	rec.LastActivity = now
	if countTurn {
		rec.TurnCount++
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
