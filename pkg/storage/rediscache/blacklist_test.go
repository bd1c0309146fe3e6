package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBlacklist is a durable-store stand-in that counts lookups.
type memoryBlacklist struct {
	tokens  map[string]time.Time
	lookups int
	failing bool
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{tokens: make(map[string]time.Time)}
}

func (m *memoryBlacklist) Invalidate(_ context.Context, token string) error {
	if m.failing {
		return errors.New("store down")
	}
	if _, ok := m.tokens[token]; !ok {
		m.tokens[token] = time.Now()
	}
	return nil
}

func (m *memoryBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	m.lookups++
	if m.failing {
		return false, errors.New("store down")
	}
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *memoryBlacklist) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var purged int64
	for token, created := range m.tokens {
		if created.Before(before) {
			delete(m.tokens, token)
			purged++
		}
	}
	return purged, nil
}

func setupCache(t *testing.T) (*Blacklist, *memoryBlacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	next := newMemoryBlacklist()
	return NewBlacklist(client, next, 4*time.Hour), next, mr
}

func TestBlacklist_InvalidateWritesThrough(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Invalidate(ctx, "token-a"))

	// Durable store has it.
	_, ok := next.tokens["token-a"]
	assert.True(t, ok)

	// Cache has it too.
	assert.True(t, mr.Exists("blacklist:token-a"))
}

func TestBlacklist_InvalidateDurableFailure(t *testing.T) {
	cache, next, mr := setupCache(t)
	next.failing = true

	err := cache.Invalidate(context.Background(), "token-a")
	assert.Error(t, err)
	// Nothing cached when the durable write failed.
	assert.False(t, mr.Exists("blacklist:token-a"))
}

func TestBlacklist_CacheHitSkipsStore(t *testing.T) {
	cache, next, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Invalidate(ctx, "token-a"))

	blacklisted, err := cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)
	assert.Zero(t, next.lookups)
}

func TestBlacklist_MissFallsBackAndBackfills(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	// Entry exists only in the durable store, as after a cache restart.
	require.NoError(t, next.Invalidate(ctx, "token-a"))

	blacklisted, err := cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)
	assert.Equal(t, 1, next.lookups)
	assert.True(t, mr.Exists("blacklist:token-a"))

	// Second lookup is served from the cache.
	blacklisted, err = cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)
	assert.Equal(t, 1, next.lookups)
}

func TestBlacklist_UnknownToken(t *testing.T) {
	cache, _, _ := setupCache(t)

	blacklisted, err := cache.IsBlacklisted(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestBlacklist_RedisDownDegradesToStore(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, next.Invalidate(ctx, "token-a"))
	mr.Close()

	blacklisted, err := cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestBlacklist_PurgeDelegates(t *testing.T) {
	cache, next, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, next.Invalidate(ctx, "old-token"))

	purged, err := cache.PurgeExpired(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Empty(t, next.tokens)
}
