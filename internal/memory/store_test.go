// internal/memory/store_test.go
package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-agents/internal/models"
)

func newTestRedisStore(t *testing.T, maxHistory int, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, maxHistory, ttl), mr
}

func userTurn(content string) models.ConversationTurn {
	return models.ConversationTurn{
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func TestRedisStoreAppendAndRecent(t *testing.T) {
	store, _ := newTestRedisStore(t, 50, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", userTurn("qual a receita total?")))
	require.NoError(t, store.Append(ctx, "s1", models.ConversationTurn{
		Role:    models.RoleAssistant,
		Content: "A receita bruta total foi R$ 1.2M.",
	}))

	turns, err := store.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, "qual a receita total?", turns[0].Content)
}

func TestRedisStoreRecentReturnsLastNInOrder(t *testing.T) {
	store, _ := newTestRedisStore(t, 50, 24*time.Hour)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, store.Append(ctx, "s1", userTurn(fmt.Sprintf("msg-%d", i))))
	}

	turns, err := store.Recent(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "msg-5", turns[0].Content)
	assert.Equal(t, "msg-7", turns[2].Content)
}

func TestRedisStoreTrimsHistory(t *testing.T) {
	store, _ := newTestRedisStore(t, 5, 24*time.Hour)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, store.Append(ctx, "s1", userTurn(fmt.Sprintf("msg-%d", i))))
	}

	turns, err := store.Recent(ctx, "s1", 50)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	assert.Equal(t, "msg-7", turns[0].Content)
	assert.Equal(t, "msg-11", turns[4].Content)

	rec, err := store.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 12, rec.TurnCount)
}

func TestRedisStoreSessionLifecycle(t *testing.T) {
	store, _ := newTestRedisStore(t, 50, 24*time.Hour)
	ctx := context.Background()

	_, err := store.Session(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Append(ctx, "s1", userTurn("oi")))

	rec, err := store.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.SessionID)
	assert.Equal(t, 1, rec.TurnCount)
	assert.False(t, rec.LastActivity.IsZero())

	require.NoError(t, store.Clear(ctx, "s1"))
	_, err = store.Session(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	turns, err := store.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStoreKeysCarryTTL(t *testing.T) {
	store, mr := newTestRedisStore(t, 50, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", userTurn("oi")))

	assert.Greater(t, mr.TTL("session:s1"), time.Duration(0))
	assert.Greater(t, mr.TTL("conversation:s1"), time.Duration(0))

	mr.FastForward(2 * time.Hour)

	_, err := store.Session(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemoryStoreAppendTrimAndRecent(t *testing.T) {
	store := NewInMemoryStore(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.Append(ctx, "s1", userTurn(fmt.Sprintf("msg-%d", i))))
	}

	turns, err := store.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "msg-3", turns[0].Content)
	assert.Equal(t, "msg-5", turns[2].Content)

	rec, err := store.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 6, rec.TurnCount)
}

func TestInMemoryStoreExpireIdle(t *testing.T) {
	store := NewInMemoryStore(50, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "old", userTurn("oi")))
	require.NoError(t, store.Append(ctx, "fresh", userTurn("oi")))

	// Backdate one session past the idle cutoff.
	store.mu.Lock()
	store.sessions["old"].LastActivity = time.Now().UTC().Add(-2 * time.Hour)
	store.mu.Unlock()

	expired, err := store.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	_, err = store.Session(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Session(ctx, "fresh")
	assert.NoError(t, err)
}

func TestInMemoryStoreIsolatesSessions(t *testing.T) {
	store := NewInMemoryStore(50, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", userTurn("pergunta-a")))
	require.NoError(t, store.Append(ctx, "b", userTurn("pergunta-b")))

	turnsA, err := store.Recent(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, turnsA, 1)
	assert.Equal(t, "pergunta-a", turnsA[0].Content)
}
