package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash_backend/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteBarStore {
	t.Helper()
	store, err := NewSQLiteBarStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

func TestSQLiteUpsertOverwritesByKey(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	bar := models.Bar{Symbol: "AAPL", Date: "2025-03-01", Close: 100, Volume: 10}
	require.NoError(t, store.Upsert(ctx, bar))

	bar.Close = 105
	bar.Volume = 20
	require.NoError(t, store.Upsert(ctx, bar))

	latest, err := store.FindLatest(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 105.0, latest.Close)
	assert.Equal(t, int64(20), latest.Volume)

	bars, err := store.FindRange(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestSQLiteFindLatestEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)

	latest, err := store.FindLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestSQLiteFindRangeNewestFirst(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-03-02", "2025-03-01", "2025-03-03"} {
		require.NoError(t, store.Upsert(ctx, models.Bar{Symbol: "AAPL", Date: date, Close: 1}))
	}
	// A second symbol must not leak into the range.
	require.NoError(t, store.Upsert(ctx, models.Bar{Symbol: "MSFT", Date: "2025-03-04", Close: 1}))

	bars, err := store.FindRange(ctx, "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2025-03-03", bars[0].Date)
	assert.Equal(t, "2025-03-02", bars[1].Date)
}

func TestSQLiteDeleteAll(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, models.Bar{Symbol: "AAPL", Date: "2025-03-01", Close: 1}))
	require.NoError(t, store.Upsert(ctx, models.Bar{Symbol: "AAPL", Date: "2025-03-02", Close: 1}))
	require.NoError(t, store.Upsert(ctx, models.Bar{Symbol: "MSFT", Date: "2025-03-01", Close: 1}))

	deleted, err := store.DeleteAll(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	bars, err := store.FindRange(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, bars)

	// The other symbol's history is untouched.
	bars, err = store.FindRange(ctx, "MSFT", 10)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestSQLiteInsertMany(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	bars := []models.Bar{
		{Symbol: "AAPL", Date: "2025-03-01", Close: 100, DailyReturn: 0, SMA20: 100, SMA50: 100},
		{Symbol: "AAPL", Date: "2025-03-02", Close: 110, DailyReturn: 0.1, SMA20: 105, SMA50: 105},
	}
	require.NoError(t, store.InsertMany(ctx, bars))

	got, err := store.FindRange(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 110.0, got[0].Close)
	assert.InDelta(t, 0.1, got[0].DailyReturn, 1e-9)
	assert.InDelta(t, 105.0, got[0].SMA20, 1e-9)
}

func TestSQLiteInsertManyEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, store.InsertMany(context.Background(), nil))
}
