package services

import (
	"context"
	"log"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"findash_backend/models"
)

// TradingDaysPerYear scales a daily-return standard deviation to a yearly
// percentage (√252 annualization).
const TradingDaysPerYear = 252

// MetricsService reduces a trailing window of stored bars to per-symbol
// point statistics. The store handle is injected at construction.
type MetricsService struct {
	store BarStore
	// defaultSymbols is used when a query names no symbols.
	defaultSymbols []string
	// window is the number of trailing bars the summary is computed over.
	window int
}

// NewMetricsService creates a metrics computer over the given store.
func NewMetricsService(store BarStore, defaultSymbols []string, window int) *MetricsService {
	if window <= 0 {
		window = 30
	}
	return &MetricsService{store: store, defaultSymbols: defaultSymbols, window: window}
}

// GetSummaryMetrics computes summary metrics for the given symbols (all
// tracked symbols when the list is empty). Symbols with no stored history
// are silently omitted from the result: absence means "metrics unavailable",
// never an error.
func (m *MetricsService) GetSummaryMetrics(ctx context.Context, symbols []string) map[string]models.SummaryMetrics {
	if len(symbols) == 0 {
		symbols = m.defaultSymbols
	}

	result := make(map[string]models.SummaryMetrics, len(symbols))
	for _, symbol := range symbols {
		metrics, ok := m.SymbolMetrics(ctx, symbol)
		if !ok {
			continue
		}
		result[symbol] = metrics
	}
	return result
}

// SymbolMetrics computes the summary for one symbol. The boolean result is
// false when no metrics are available (no stored history or a store read
// failure); branching on it is structural, not exception-driven.
func (m *MetricsService) SymbolMetrics(ctx context.Context, symbol string) (models.SummaryMetrics, bool) {
	window, err := m.store.FindRange(ctx, symbol, m.window)
	if err != nil {
		log.Printf("Error reading window for %s: %v", symbol, err)
		return models.SummaryMetrics{}, false
	}
	if len(window) == 0 {
		log.Printf("Warning: no data found for %s", symbol)
		return models.SummaryMetrics{}, false
	}

	// FindRange returns newest first; computation wants ascending order.
	reverse(window)

	latest := window[len(window)-1]
	oldest := window[0]

	periodReturn := 0.0
	if oldest.Close != 0 {
		periodReturn = (latest.Close/oldest.Close - 1) * 100
	}

	returns := make([]float64, len(window))
	for i, bar := range window {
		returns[i] = bar.DailyReturn
	}

	annualizedVol := 0.0
	if sd, err := stats.StandardDeviationSample(stats.Float64Data(returns)); err == nil && !math.IsNaN(sd) {
		annualizedVol = sd * math.Sqrt(TradingDaysPerYear) * 100
	}

	return models.SummaryMetrics{
		LatestPrice:          round2(latest.Close),
		PeriodReturn:         round2(periodReturn),
		AnnualizedVolatility: round2(annualizedVol),
		LastUpdated:          latest.Date,
	}, true
}

// round2 rounds to 2 decimal places at the output boundary; internal
// computation stays at full float precision.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func reverse(bars []models.Bar) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}
