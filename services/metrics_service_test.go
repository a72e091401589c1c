package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash_backend/models"
)

func seedBars(t *testing.T, store *memStore, symbol string, closes []float64, returns []float64) {
	t.Helper()
	ctx := context.Background()
	for i, c := range closes {
		bar := models.Bar{Symbol: symbol, Date: day(i + 1), Close: c}
		if returns != nil {
			bar.DailyReturn = returns[i]
		}
		require.NoError(t, store.Upsert(ctx, bar))
	}
}

func TestSummaryMetricsComputation(t *testing.T) {
	store := newMemStore()
	seedBars(t, store, "AAPL",
		[]float64{100, 110, 121},
		[]float64{0, 0.1, 0.1})

	svc := NewMetricsService(store, nil, 30)
	metrics, ok := svc.SymbolMetrics(context.Background(), "AAPL")
	require.True(t, ok)

	assert.Equal(t, 121.0, metrics.LatestPrice)
	// (121/100 - 1) * 100
	assert.Equal(t, 21.0, metrics.PeriodReturn)
	// Sample stddev of [0, 0.1, 0.1] is 0.0577350..., annualized by √252
	// and scaled to percent: 91.6515... → 91.65 at the boundary.
	assert.Equal(t, 91.65, metrics.AnnualizedVolatility)
	assert.Equal(t, day(3), metrics.LastUpdated)
}

func TestSummaryMetricsZeroOldestPrice(t *testing.T) {
	store := newMemStore()
	seedBars(t, store, "AAPL", []float64{0, 50, 60}, nil)

	svc := NewMetricsService(store, nil, 30)
	metrics, ok := svc.SymbolMetrics(context.Background(), "AAPL")
	require.True(t, ok)

	// Division by zero is defined away, not a crash.
	assert.Equal(t, 0.0, metrics.PeriodReturn)
	assert.Equal(t, 60.0, metrics.LatestPrice)
}

func TestSummaryMetricsSingleObservation(t *testing.T) {
	store := newMemStore()
	seedBars(t, store, "AAPL", []float64{42.424242}, nil)

	svc := NewMetricsService(store, nil, 30)
	metrics, ok := svc.SymbolMetrics(context.Background(), "AAPL")
	require.True(t, ok)

	// One observation: deviation undefined, return over itself is zero.
	assert.Equal(t, 0.0, metrics.AnnualizedVolatility)
	assert.Equal(t, 0.0, metrics.PeriodReturn)
	assert.Equal(t, 42.42, metrics.LatestPrice)
}

func TestSummaryMetricsWindowLimit(t *testing.T) {
	store := newMemStore()
	// 40 bars; only the most recent 5 should enter the window.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	seedBars(t, store, "AAPL", closes, nil)

	svc := NewMetricsService(store, nil, 5)
	metrics, ok := svc.SymbolMetrics(context.Background(), "AAPL")
	require.True(t, ok)

	// Oldest in window is close=36, latest is 40.
	assert.Equal(t, 40.0, metrics.LatestPrice)
	assert.Equal(t, 11.11, metrics.PeriodReturn)
}

func TestSummaryMetricsOmitsUnknownSymbols(t *testing.T) {
	store := newMemStore()
	seedBars(t, store, "AAPL", []float64{10, 11}, nil)

	svc := NewMetricsService(store, nil, 30)
	metrics := svc.GetSummaryMetrics(context.Background(), []string{"AAPL", "NOPE"})

	assert.Len(t, metrics, 1)
	assert.Contains(t, metrics, "AAPL")
	assert.NotContains(t, metrics, "NOPE")
}

func TestSummaryMetricsDefaultSymbols(t *testing.T) {
	store := newMemStore()
	seedBars(t, store, "MSFT", []float64{10, 12}, nil)

	svc := NewMetricsService(store, []string{"MSFT", "AMZN"}, 30)
	metrics := svc.GetSummaryMetrics(context.Background(), nil)

	assert.Len(t, metrics, 1)
	assert.Contains(t, metrics, "MSFT")
}
