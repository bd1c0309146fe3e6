// Package rediscache layers a Redis read-through cache over the durable
// token blacklist so the auth guard does not hit the database on every
// request.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/recipevault/recipevault/pkg/storage"
)

const keyPrefix = "blacklist:"

// Blacklist caches invalidation state in Redis in front of a durable store.
// Redis being down degrades to the durable store, never to letting a
// logged-out token through.
type Blacklist struct {
	client *redis.Client
	next   storage.BlacklistStore
	ttl    time.Duration
}

// NewBlacklist wraps the durable store with a Redis cache. Cached entries
// live for ttl, which should match the token lifetime.
func NewBlacklist(client *redis.Client, next storage.BlacklistStore, ttl time.Duration) *Blacklist {
	return &Blacklist{client: client, next: next, ttl: ttl}
}

// Invalidate writes through to the durable store first, then best-effort
// caches the entry. A cache write failure is not an error; the durable row
// is the source of truth.
func (b *Blacklist) Invalidate(ctx context.Context, token string) error {
	if err := b.next.Invalidate(ctx, token); err != nil {
		return err
	}
	b.client.Set(ctx, keyPrefix+token, "1", b.ttl)
	return nil
}

// IsBlacklisted checks Redis first and falls back to the durable store on a
// miss or a cache error. Positive lookups from the store are cached.
func (b *Blacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	val, err := b.client.Get(ctx, keyPrefix+token).Result()
	if err == nil && val != "" {
		return true, nil
	}

	// Cache miss or cache unreachable; the durable store decides.
	blacklisted, err := b.next.IsBlacklisted(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to check durable blacklist: %w", err)
	}
	if blacklisted {
		b.client.Set(ctx, keyPrefix+token, "1", b.ttl)
	}
	return blacklisted, nil
}

// PurgeExpired delegates to the durable store. Cached entries expire on
// their own via the Redis TTL.
func (b *Blacklist) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return b.next.PurgeExpired(ctx, before)
}
