package services

import (
	"context"

	"findash_backend/models"
)

// BarStore is the narrow time-series store contract consumed by the
// synchronizer and the metrics service. Implementations must make Upsert
// atomic per (symbol, date) key so that retried syncs stay idempotent.
//
// The store handle is injected at construction everywhere it is used; there
// is no package-level store singleton.
type BarStore interface {
	// FindLatest returns the most recent stored bar for symbol, or nil when
	// the symbol has no stored history.
	FindLatest(ctx context.Context, symbol string) (*models.Bar, error)

	// FindRange returns up to limit bars for symbol, newest first.
	FindRange(ctx context.Context, symbol string, limit int) ([]models.Bar, error)

	// Upsert inserts or overwrites the bar keyed by (symbol, date).
	Upsert(ctx context.Context, bar models.Bar) error

	// DeleteAll removes every stored bar for symbol and reports how many
	// rows were removed.
	DeleteAll(ctx context.Context, symbol string) (int64, error)

	// InsertMany inserts a batch of bars. Callers use it only after
	// DeleteAll on the full-replace path, so key collisions are not expected.
	InsertMany(ctx context.Context, bars []models.Bar) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
