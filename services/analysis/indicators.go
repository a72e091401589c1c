package analysis

import (
	"github.com/montanaflynn/stats"

	"findash_backend/models"
)

// Rolling window sizes for the derived columns.
const (
	VolatilityWindow = 20
	SMAShortWindow   = 20
	SMALongWindow    = 50
)

// Enrich returns a copy of bars with the derived columns filled in:
// daily_return, volatility_20, sma_20 and sma_50. The input must be sorted
// ascending by date; that is the caller's responsibility, and violating it
// silently produces wrong rolling windows.
//
// Windows shrink at the start of the series (min-periods = 1) instead of
// producing undefined values. Where a value is still undefined — the sample
// standard deviation of a single observation, or an empty mean — the column
// falls back to 0 for volatility and to the current close for the moving
// averages, so downstream consumers always receive a number.
func Enrich(bars []models.Bar) []models.Bar {
	if len(bars) == 0 {
		return nil
	}

	out := make([]models.Bar, len(bars))
	copy(out, bars)

	returns := make([]float64, len(out))
	closes := make([]float64, len(out))
	for i := range out {
		closes[i] = out[i].Close
		if i == 0 || out[i-1].Close == 0 {
			returns[i] = 0
		} else {
			returns[i] = out[i].Close/out[i-1].Close - 1
		}
	}

	for i := range out {
		out[i].DailyReturn = returns[i]
		out[i].Volatility20 = rollingStdDev(returns, i, VolatilityWindow)
		out[i].SMA20 = rollingMean(closes, i, SMAShortWindow, out[i].Close)
		out[i].SMA50 = rollingMean(closes, i, SMALongWindow, out[i].Close)
	}

	return out
}

// rollingStdDev computes the sample standard deviation over the trailing
// window of up to size observations ending at i. A single observation has no
// sample deviation; that and any other undefined case yields 0.
func rollingStdDev(values []float64, i, size int) float64 {
	window := trailing(values, i, size)
	if len(window) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(stats.Float64Data(window))
	if err != nil {
		return 0
	}
	return sd
}

// rollingMean computes the arithmetic mean over the trailing window of up to
// size observations ending at i, falling back to fallback when undefined.
func rollingMean(values []float64, i, size int, fallback float64) float64 {
	window := trailing(values, i, size)
	mean, err := stats.Mean(stats.Float64Data(window))
	if err != nil {
		return fallback
	}
	return mean
}

// trailing returns the slice of up to size elements ending at index i.
func trailing(values []float64, i, size int) []float64 {
	start := i - size + 1
	if start < 0 {
		start = 0
	}
	return values[start : i+1]
}
