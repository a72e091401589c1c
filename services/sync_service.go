package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"findash_backend/models"
	"findash_backend/services/analysis"
	"findash_backend/services/marketdata"
)

// SyncMode selects how a symbol's stored history is merged.
type SyncMode int

const (
	// Incremental fetches only bars newer than the latest stored date and
	// upserts them row by row, preserving the rest of the history.
	Incremental SyncMode = iota
	// FullReplace discards the symbol's stored history and refetches the
	// full trailing window.
	FullReplace
)

// String returns the report-facing name of the mode.
func (m SyncMode) String() string {
	if m == FullReplace {
		return "full_replace"
	}
	return "incremental"
}

// Sentinel errors classifying per-symbol sync outcomes.
var (
	// errEmptyResult marks a fetch that returned no new rows. Not a failure.
	errEmptyResult = errors.New("no new data")
	// errAllRowsDropped marks a fetch whose rows were all discarded during
	// cleaning (missing close throughout). Not a failure.
	errAllRowsDropped = errors.New("all rows dropped during cleaning")
)

// SyncConfig carries the tunables of the synchronizer.
type SyncConfig struct {
	// Epoch is the latest-date fallback for symbols with no stored history;
	// an incremental sync fetches strictly after it.
	Epoch string
	// FullWindowDays is the trailing calendar window a full replace refetches.
	FullWindowDays int
}

// SyncService orchestrates fetch → clean → indicator-augment → persist for
// one or many symbols. The store and source collaborators are injected at
// construction.
type SyncService struct {
	store  BarStore
	source marketdata.Source
	cfg    SyncConfig
}

// NewSyncService creates a synchronizer over the given store and source.
func NewSyncService(store BarStore, source marketdata.Source, cfg SyncConfig) *SyncService {
	if cfg.FullWindowDays <= 0 {
		cfg.FullWindowDays = 365
	}
	return &SyncService{store: store, source: source, cfg: cfg}
}

// Sync processes each symbol independently and sequentially: a failure of
// one symbol is logged, recorded in the report, and never aborts the others.
// The returned report is the only caller-visible error surface.
func (s *SyncService) Sync(ctx context.Context, symbols []string, mode SyncMode) *models.SyncReport {
	report := &models.SyncReport{
		Mode:      mode.String(),
		StartedAt: time.Now(),
	}

	for _, symbol := range symbols {
		rows, err := s.syncSymbol(ctx, symbol, mode)
		switch {
		case err == nil:
			report.Add(models.SyncOutcome{
				Symbol: symbol,
				Status: models.SyncStatusUpdated,
				Rows:   rows,
			})
			log.Printf("Updated %d bars for %s", rows, symbol)
		case errors.Is(err, errEmptyResult) || errors.Is(err, errAllRowsDropped):
			report.Add(models.SyncOutcome{
				Symbol: symbol,
				Status: models.SyncStatusSkipped,
				Reason: err.Error(),
			})
			log.Printf("Warning: skipping %s: %v", symbol, err)
		default:
			report.Add(models.SyncOutcome{
				Symbol: symbol,
				Status: models.SyncStatusFailed,
				Reason: err.Error(),
			})
			log.Printf("Error syncing %s: %v", symbol, err)
		}
	}

	report.FinishedAt = time.Now()
	log.Printf("Sync (%s) finished: updated=%d skipped=%d failed=%d",
		report.Mode, report.Updated, report.Skipped, report.Failed)
	return report
}

// syncSymbol runs the full pipeline for one symbol and returns the number of
// rows persisted.
func (s *SyncService) syncSymbol(ctx context.Context, symbol string, mode SyncMode) (int, error) {
	start, err := s.fetchStart(ctx, symbol, mode)
	if err != nil {
		return 0, fmt.Errorf("failed to determine fetch start: %w", err)
	}

	raw, err := s.source.Fetch(ctx, symbol, start)
	if err != nil {
		return 0, fmt.Errorf("source fetch failed: %w", err)
	}
	if len(raw) == 0 {
		return 0, errEmptyResult
	}

	bars := cleanBars(symbol, raw)
	if len(bars) == 0 {
		return 0, errAllRowsDropped
	}

	bars = analysis.Enrich(bars)

	if mode == FullReplace {
		return len(bars), s.replaceAll(ctx, symbol, bars)
	}
	return len(bars), s.upsertAll(ctx, bars)
}

// fetchStart computes the inclusive start date of the fetch window. A full
// replace always requests the full trailing window regardless of stored
// state; an incremental sync requests data strictly after the latest stored
// date, falling back to the configured epoch when the store is empty.
func (s *SyncService) fetchStart(ctx context.Context, symbol string, mode SyncMode) (string, error) {
	if mode == FullReplace {
		return time.Now().AddDate(0, 0, -s.cfg.FullWindowDays).Format(models.DateLayout), nil
	}

	latest, err := s.store.FindLatest(ctx, symbol)
	if err != nil {
		return "", err
	}

	lastDate := s.cfg.Epoch
	if latest != nil {
		lastDate = latest.Date
	}
	return nextDay(lastDate)
}

// nextDay returns the calendar day after date, both in YYYY-MM-DD.
func nextDay(date string) (string, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(models.DateLayout), nil
}

// replaceAll swaps a symbol's entire stored history for the freshly fetched
// set. A write failure after the delete leaves the history empty; that is a
// known risk of the replace path and is surfaced through the report rather
// than rolled back.
func (s *SyncService) replaceAll(ctx context.Context, symbol string, bars []models.Bar) error {
	deleted, err := s.store.DeleteAll(ctx, symbol)
	if err != nil {
		return fmt.Errorf("store delete failed: %w", err)
	}
	if err := s.store.InsertMany(ctx, bars); err != nil {
		return fmt.Errorf("store insert failed after deleting %d rows, history for %s is empty: %w",
			deleted, symbol, err)
	}
	return nil
}

// upsertAll writes each bar through the per-key atomic upsert. Rows already
// committed before a failure stay committed.
func (s *SyncService) upsertAll(ctx context.Context, bars []models.Bar) error {
	for _, bar := range bars {
		if err := s.store.Upsert(ctx, bar); err != nil {
			return fmt.Errorf("store write failed: %w", err)
		}
	}
	return nil
}

// cleanBars converts raw provider rows into typed bars: rows with a missing
// or non-finite close are dropped, other missing cells default to zero, and
// the result is sorted ascending by date with duplicate dates collapsed
// (last row wins).
func cleanBars(symbol string, raw []marketdata.RawBar) []models.Bar {
	byDate := make(map[string]models.Bar, len(raw))
	for _, r := range raw {
		if r.Date == "" || r.Close == nil || !isFiniteNonNegative(*r.Close) {
			continue
		}
		byDate[r.Date] = models.Bar{
			Symbol: symbol,
			Date:   r.Date,
			Open:   floatOrZero(r.Open),
			High:   floatOrZero(r.High),
			Low:    floatOrZero(r.Low),
			Close:  *r.Close,
			Volume: intOrZero(r.Volume),
		}
	}

	bars := make([]models.Bar, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func floatOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func intOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
