package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/eventgate/internal/model"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id when empty", func(t *testing.T) {
		m := NewMemory()
		rec, err := m.Create(ctx, &model.Listing{SellerID: "s1", Title: "bike"})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.RecordID())
	})

	t.Run("read returns a fresh copy", func(t *testing.T) {
		m := NewMemory()
		created, err := m.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike", Price: 100})
		require.NoError(t, err)

		got, err := m.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		require.NotNil(t, got)

		// mutating the returned record must not leak into the store
		got.(*model.Listing).Title = "mutated"
		again, err := m.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		assert.Equal(t, "bike", again.(*model.Listing).Title)
		assert.Equal(t, created.RecordID(), again.RecordID())
	})

	t.Run("read of missing id is nil, nil", func(t *testing.T) {
		m := NewMemory()
		got, err := m.Read(ctx, model.KindListing, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete of missing id is a no-op", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Delete(ctx, model.KindListing, "nope"))
	})

	t.Run("update replaces the stored value", func(t *testing.T) {
		m := NewMemory()
		_, err := m.Create(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike", Price: 100})
		require.NoError(t, err)

		_, err = m.Update(ctx, &model.Listing{ID: "l1", SellerID: "s1", Title: "bike", Price: 80})
		require.NoError(t, err)

		got, err := m.Read(ctx, model.KindListing, "l1")
		require.NoError(t, err)
		assert.Equal(t, int64(80), got.(*model.Listing).Price)
	})

	t.Run("list returns only the requested kind, sorted by id", func(t *testing.T) {
		m := NewMemory()
		_, err := m.Create(ctx, &model.Listing{ID: "b", SellerID: "s", Title: "two"})
		require.NoError(t, err)
		_, err = m.Create(ctx, &model.Listing{ID: "a", SellerID: "s", Title: "one"})
		require.NoError(t, err)
		_, err = m.Create(ctx, &model.User{ID: "u1", Email: "a@b.c"})
		require.NoError(t, err)

		recs, err := m.List(ctx, model.KindListing)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "a", recs[0].RecordID())
		assert.Equal(t, "b", recs[1].RecordID())
	})
}
