package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeyard/eventgate/internal/model"
)

// countingBackend wraps another backend and counts calls per operation.
type countingBackend struct {
	Backend
	creates int
	reads   int
	deletes int
}

func (b *countingBackend) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	b.creates++
	return b.Backend.Create(ctx, rec)
}

func (b *countingBackend) Read(ctx context.Context, kind, id string) (model.Record, error) {
	b.reads++
	return b.Backend.Read(ctx, kind, id)
}

func (b *countingBackend) Delete(ctx context.Context, kind, id string) error {
	b.deletes++
	return b.Backend.Delete(ctx, kind, id)
}

// failingBackend errors on every operation.
type failingBackend struct{ err error }

func (b *failingBackend) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	return nil, b.err
}
func (b *failingBackend) Read(ctx context.Context, kind, id string) (model.Record, error) {
	return nil, b.err
}
func (b *failingBackend) Update(ctx context.Context, rec model.Record) (model.Record, error) {
	return nil, b.err
}
func (b *failingBackend) Delete(ctx context.Context, kind, id string) error { return b.err }
func (b *failingBackend) List(ctx context.Context, kind string) ([]model.Record, error) {
	return nil, b.err
}

func TestCacheAsideRead(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fills cache, second read is a hit", func(t *testing.T) {
		cache := &countingBackend{Backend: NewMemory()}
		primary := &countingBackend{Backend: NewMemory()}
		store := NewCacheAside(cache, primary, zap.NewNop())

		_, err := store.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike"})
		require.NoError(t, err)

		got, err := store.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, primary.reads)
		assert.Equal(t, 1, cache.creates)

		got, err = store.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, primary.reads, "hit must not touch the primary")
	})

	t.Run("cache error degrades to primary", func(t *testing.T) {
		primary := &countingBackend{Backend: NewMemory()}
		store := NewCacheAside(&failingBackend{err: errors.New("redis down")}, primary, zap.NewNop())

		_, err := store.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike"})
		require.NoError(t, err)

		got, err := store.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "bike", got.(*model.Listing).Title)
	})

	t.Run("primary error propagates", func(t *testing.T) {
		primaryErr := errors.New("mysql gone")
		store := NewCacheAside(NewMemory(), &failingBackend{err: primaryErr}, zap.NewNop())

		_, err := store.Read(ctx, model.KindListing, "l1")
		require.ErrorIs(t, err, primaryErr)
	})

	t.Run("missing record stays nil, nil and is not cached", func(t *testing.T) {
		cache := &countingBackend{Backend: NewMemory()}
		store := NewCacheAside(cache, NewMemory(), zap.NewNop())

		got, err := store.Read(ctx, model.KindListing, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Zero(t, cache.creates)
	})
}

func TestCacheAsideWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("update invalidates the cached entry", func(t *testing.T) {
		cache := &countingBackend{Backend: NewMemory()}
		primary := &countingBackend{Backend: NewMemory()}
		store := NewCacheAside(cache, primary, zap.NewNop())

		_, err := store.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike", Price: 100})
		require.NoError(t, err)
		_, err = store.Read(ctx, model.KindListing, "l1") // warm the cache
		require.NoError(t, err)

		_, err = store.Update(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike", Price: 80})
		require.NoError(t, err)
		assert.Equal(t, 1, cache.deletes)

		got, err := store.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		assert.Equal(t, int64(80), got.(*model.Listing).Price)
	})

	t.Run("update error skips invalidation", func(t *testing.T) {
		cache := &countingBackend{Backend: NewMemory()}
		store := NewCacheAside(cache, &failingBackend{err: errors.New("mysql gone")}, zap.NewNop())

		_, err := store.Update(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike"})
		require.Error(t, err)
		assert.Zero(t, cache.deletes)
	})

	t.Run("delete is tolerated when the cache is down", func(t *testing.T) {
		primary := NewMemory()
		_, err := primary.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike"})
		require.NoError(t, err)

		store := NewCacheAside(&failingBackend{err: errors.New("redis down")}, primary, zap.NewNop())
		require.NoError(t, store.Delete(ctx, model.KindListing, "l1"))

		got, err := primary.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCacheAsideList(t *testing.T) {
	ctx := context.Background()

	t.Run("list bypasses the cache", func(t *testing.T) {
		cache := &countingBackend{Backend: NewMemory()}
		primary := NewMemory()
		_, err := primary.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike"})
		require.NoError(t, err)

		store := NewCacheAside(cache, primary, zap.NewNop())
		recs, err := store.List(ctx, model.KindListing)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Zero(t, cache.reads)
	})
}
