package videos

import (
	"context"
	"sync"
	"time"

	"github.com/clipmarket/client/internal/models"
)

type cacheEntry struct {
	summary models.VideoSummary
	expires time.Time
}

// CachingProvider wraps another Provider with a TTL-based in-memory
// cache. Video details are immutable within a session, so the watch
// page can revisit a video without re-fetching it.
type CachingProvider struct {
	base Provider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingProvider returns a Provider that caches lookups for the provided TTL.
func NewCachingProvider(base Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Lookup returns cached details when available, otherwise it delegates
// to the underlying provider and stores the result.
func (c *CachingProvider) Lookup(ctx context.Context, id string) (models.VideoSummary, error) {
	if c == nil || c.base == nil {
		return models.VideoSummary{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.summary, nil
	}

	summary, err := c.base.Lookup(ctx, id)
	if err != nil {
		return models.VideoSummary{}, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry{summary: summary, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return summary, nil
}
