package marketdata

import "context"

// RawBar is one day's record as returned by the provider, before cleaning.
// Price and volume cells are nullable: providers routinely return null cells
// for halted days or partial sessions, and the clean step decides what to do
// with them (rows with a null close are dropped).
type RawBar struct {
	Date   string
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
}

// Source fetches daily bars for a symbol starting at startDate (inclusive,
// YYYY-MM-DD). An empty result means "no new data" and is not an error;
// errors are reserved for transport-level failures.
type Source interface {
	Fetch(ctx context.Context, symbol, startDate string) ([]RawBar, error)
}
