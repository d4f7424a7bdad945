package application

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// Cache is the in-memory source of truth for granted features. It wraps a
// durable store and evaluates expiration on every read; there is no timer.
//
// Hydrate must complete before the first Has call. Until then the cache is
// empty and every feature reads as locked.
type Cache struct {
	store  domain.Store
	clock  domain.Clock
	logger *slog.Logger

	// persistMu orders store writes so the durable record matches the
	// latest in-memory state.
	persistMu sync.Mutex

	mu       sync.RWMutex
	features map[domain.Feature]struct{}
	expireAt *time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the clock used for expiration checks.
func WithClock(clock domain.Clock) CacheOption {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates an empty cache over store.
func NewCache(store domain.Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:    store,
		clock:    domain.SystemClock,
		logger:   slog.Default(),
		features: make(map[domain.Feature]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate loads the stored record into memory. An expired record is
// discarded and cleared from the store. A missing or unreadable record
// leaves the cache empty.
func (c *Cache) Hydrate(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	record := c.store.Get(ctx)

	c.mu.Lock()
	c.features = make(map[domain.Feature]struct{})
	c.expireAt = nil
	expired := record.ExpiredAt(c.clock.Now())
	if record != nil && !expired {
		for _, f := range record.Features {
			c.features[f] = struct{}{}
		}
		if record.ExpireAt != nil {
			t := *record.ExpireAt
			c.expireAt = &t
		}
	}
	count := len(c.features)
	c.mu.Unlock()

	if expired {
		c.logger.InfoContext(ctx, "stored entitlements expired, clearing",
			"expire_at", record.ExpireAt.UTC(),
		)
		c.store.Clear(ctx)
		return
	}
	c.logger.DebugContext(ctx, "entitlements hydrated", "features", count)
}

// Has reports whether feature is granted and unexpired at the clock's now.
func (c *Cache) Has(feature domain.Feature) bool {
	return c.HasAt(feature, c.clock.Now())
}

// HasAt reports whether feature is granted and unexpired at now.
func (c *Cache) HasAt(feature domain.Feature, now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked(now) {
		return false
	}
	_, ok := c.features[feature]
	return ok
}

// Grant adds features and replaces the expiration with expireAt (nil means
// no expiration), then persists the full record. The in-memory grant stands
// even if persistence fails.
func (c *Cache) Grant(ctx context.Context, features []domain.Feature, expireAt *time.Time) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	// An expired record is empty; its features must not come back.
	if c.expiredLocked(c.clock.Now()) {
		c.features = make(map[domain.Feature]struct{})
	}
	for _, f := range features {
		if f == "" {
			continue
		}
		c.features[f] = struct{}{}
	}
	if expireAt != nil {
		t := *expireAt
		c.expireAt = &t
	} else {
		c.expireAt = nil
	}
	record := domain.NewRecord(c.featureListLocked(), c.expireAt)
	c.mu.Unlock()

	c.store.Set(ctx, record)
}

// RevokeAll clears every grant in memory and in the store.
func (c *Cache) RevokeAll(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.features = make(map[domain.Feature]struct{})
	c.expireAt = nil
	c.mu.Unlock()

	c.store.Clear(ctx)
}

// Granted returns the currently valid features, sorted. It is empty when
// the record has expired.
func (c *Cache) Granted() []domain.Feature {
	now := c.clock.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked(now) {
		return []domain.Feature{}
	}
	return c.featureListLocked()
}

// ExpiresAt returns a copy of the current expiration, or nil.
func (c *Cache) ExpiresAt() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expireAt == nil {
		return nil
	}
	t := *c.expireAt
	return &t
}

func (c *Cache) expiredLocked(now time.Time) bool {
	return c.expireAt != nil && !now.Before(*c.expireAt)
}

func (c *Cache) featureListLocked() []domain.Feature {
	out := make([]domain.Feature, 0, len(c.features))
	for f := range c.features {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

var (
	_ Checker = (*Cache)(nil)
	_ Grantor = (*Cache)(nil)
)
