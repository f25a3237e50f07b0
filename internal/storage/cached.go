package storage

import (
	"context"
	"time"

	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/model"
	"go.uber.org/zap"
)

// lookup is the explicit tri-state outcome of a cache read. Miss and error
// both fall through to the primary; they are logged and counted apart.
type lookup int

const (
	lookupHit lookup = iota
	lookupMiss
	lookupError
)

func (l lookup) String() string {
	switch l {
	case lookupHit:
		return "hit"
	case lookupMiss:
		return "miss"
	default:
		return "error"
	}
}

// CacheAside composes a cache backend and a primary backend, both storage
// ports, into one storage port. The cache is an optimization with no
// correctness authority: every cache failure degrades to "behave as if there
// were no cache", while primary failures always propagate.
type CacheAside struct {
	cache   Backend
	primary Backend
	log     *zap.Logger

	// Per cache-operation timeout; a timed-out cache call is treated the
	// same as any other cache error.
	cacheTimeout time.Duration
}

func NewCacheAside(cache, primary Backend, log *zap.Logger) *CacheAside {
	return &CacheAside{
		cache:        cache,
		primary:      primary,
		log:          log,
		cacheTimeout: 500 * time.Millisecond,
	}
}

// Create delegates to the primary only; the cache is populated lazily on the
// next read.
func (c *CacheAside) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	return c.primary.Create(ctx, rec)
}

func (c *CacheAside) Read(ctx context.Context, kind, id string) (model.Record, error) {
	rec, outcome := c.cacheRead(ctx, kind, id)
	metrics.CacheLookups.WithLabelValues(outcome.String()).Inc()
	if outcome == lookupHit {
		return rec, nil
	}

	primary, err := c.primary.Read(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if primary != nil {
		c.fill(ctx, primary)
	}
	return primary, nil
}

// Update writes through to the primary and invalidates the cache entry so
// the next read repopulates from the authoritative source.
func (c *CacheAside) Update(ctx context.Context, rec model.Record) (model.Record, error) {
	updated, err := c.primary.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, updated.Kind(), updated.RecordID())
	return updated, nil
}

func (c *CacheAside) Delete(ctx context.Context, kind, id string) error {
	if err := c.primary.Delete(ctx, kind, id); err != nil {
		return err
	}
	c.invalidate(ctx, kind, id)
	return nil
}

// List always bypasses the cache: invalidation on arbitrary single-record
// writes cannot keep a list cache coherent.
func (c *CacheAside) List(ctx context.Context, kind string) ([]model.Record, error) {
	return c.primary.List(ctx, kind)
}

func (c *CacheAside) cacheRead(ctx context.Context, kind, id string) (model.Record, lookup) {
	cctx, cancel := context.WithTimeout(ctx, c.cacheTimeout)
	defer cancel()

	rec, err := c.cache.Read(cctx, kind, id)
	if err != nil {
		c.log.Warn("cache read failed, falling through to primary",
			zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		return nil, lookupError
	}
	if rec == nil {
		return nil, lookupMiss
	}
	return rec, lookupHit
}

// fill stores a primary result in the cache, best effort.
func (c *CacheAside) fill(ctx context.Context, rec model.Record) {
	cctx, cancel := context.WithTimeout(ctx, c.cacheTimeout)
	defer cancel()

	if _, err := c.cache.Create(cctx, rec); err != nil {
		c.log.Warn("cache fill failed",
			zap.String("kind", rec.Kind()), zap.String("id", rec.RecordID()), zap.Error(err))
	}
}

func (c *CacheAside) invalidate(ctx context.Context, kind, id string) {
	cctx, cancel := context.WithTimeout(ctx, c.cacheTimeout)
	defer cancel()

	if err := c.cache.Delete(cctx, kind, id); err != nil {
		c.log.Warn("cache invalidate failed",
			zap.String("kind", kind), zap.String("id", id), zap.Error(err))
	}
}
