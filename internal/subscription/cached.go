package subscription

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const snapshotCacheKey = "snapshot"

// CachedProvider memoises the snapshot of another provider for a TTL.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

// NewCachedProvider wraps next. A non-positive ttl disables caching.
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		return &CachedProvider{next: next}
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Snapshot returns the memoised snapshot, fetching it from next on a miss.
func (p *CachedProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if p.cache == nil {
		return p.next.Snapshot(ctx)
	}
	if cached, ok := p.cache.Get(snapshotCacheKey); ok {
		s := cached.(Snapshot)
		return &s, nil
	}
	snap, err := p.next.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Set(snapshotCacheKey, *snap, cache.DefaultExpiration)
	return snap, nil
}

// Invalidate drops the memoised snapshot so the next call hits the
// underlying provider.
func (p *CachedProvider) Invalidate() {
	if p.cache != nil {
		p.cache.Delete(snapshotCacheKey)
	}
}
