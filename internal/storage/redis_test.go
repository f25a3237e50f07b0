package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradeyard/eventgate/internal/model"
)

func TestRedisKeyNamespace(t *testing.T) {
	primary := NewRedis(nil, 0)
	cache := NewRedisCache(nil, time.Hour)

	t.Run("primary keys are bare kind:id", func(t *testing.T) {
		assert.Equal(t, "listing:l1", primary.key(model.KindListing, "l1"))
	})

	t.Run("cache keys carry the cache namespace", func(t *testing.T) {
		assert.Equal(t, "cache:listing:l1", cache.key(model.KindListing, "l1"))
	})

	// A cache and a primary may share one client and DB. Invalidating a
	// cache entry issues a DEL on the cache key; it must never name the
	// key the primary just wrote, or every update would erase the record.
	t.Run("cache and primary keyspaces never collide", func(t *testing.T) {
		for _, kind := range model.Kinds() {
			assert.NotEqual(t, primary.key(kind, "x"), cache.key(kind, "x"), kind)
		}
	})
}
