package storage

import (
	"context"
	"time"
)

// WithBlacklist returns a Store that delegates blacklist operations to bl and
// everything else to s. Used to put a cache in front of the blacklist table
// without touching the rest of the store.
func WithBlacklist(s Store, bl BlacklistStore) Store {
	return &blacklistOverride{Store: s, bl: bl}
}

type blacklistOverride struct {
	Store
	bl BlacklistStore
}

func (o *blacklistOverride) Invalidate(ctx context.Context, token string) error {
	return o.bl.Invalidate(ctx, token)
}

func (o *blacklistOverride) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return o.bl.IsBlacklisted(ctx, token)
}

func (o *blacklistOverride) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return o.bl.PurgeExpired(ctx, before)
}
