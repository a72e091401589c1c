package models

// DateLayout is the canonical date format for stored bars. Dates are kept as
// strings so that lexicographic order in the store matches chronological order.
const DateLayout = "2006-01-02"

// Bar represents one trading day's OHLCV record for one symbol, plus the
// derived columns recomputed on every sync. (symbol, date) is the natural key;
// the store holds at most one Bar per key and Close is never zero-from-null
// in a stored Bar (rows with missing close are dropped before merge).
type Bar struct {
	Symbol string  `bson:"symbol" json:"symbol"`
	Date   string  `bson:"date" json:"date"`
	Open   float64 `bson:"open" json:"open"`
	High   float64 `bson:"high" json:"high"`
	Low    float64 `bson:"low" json:"low"`
	Close  float64 `bson:"close" json:"close"`
	Volume int64   `bson:"volume" json:"volume"`

	// Derived fields. Never trusted as externally supplied truth; the
	// synchronizer recalculates them from the close series on every merge.
	DailyReturn  float64 `bson:"daily_return" json:"daily_return"`
	Volatility20 float64 `bson:"volatility_20" json:"volatility_20"`
	SMA20        float64 `bson:"sma_20" json:"sma_20"`
	SMA50        float64 `bson:"sma_50" json:"sma_50"`
}

// SummaryMetrics is the per-symbol point summary derived from the trailing
// window of stored bars. It is recomputed on demand and never persisted.
type SummaryMetrics struct {
	LatestPrice          float64 `json:"latest_price"`
	PeriodReturn         float64 `json:"period_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	LastUpdated          string  `json:"last_updated"`
}
