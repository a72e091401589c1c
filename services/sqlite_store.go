package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"findash_backend/models"
)

// SQLiteBarStore persists daily bars in a local SQLite database. It backs
// deployments without a MongoDB instance and keeps the same (symbol, date)
// key semantics via the table's primary key.
type SQLiteBarStore struct {
	db *sql.DB
}

// NewSQLiteBarStore opens (or creates) the database at path and ensures the
// bars table exists. Use ":memory:" for an ephemeral store.
func NewSQLiteBarStore(path string) (*SQLiteBarStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	store := &SQLiteBarStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("SQLite bar store initialized at %s", path)
	return store, nil
}

// createTables creates the bars table keyed by (symbol, date).
func (s *SQLiteBarStore) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			symbol        TEXT NOT NULL,
			date          TEXT NOT NULL,
			open          REAL NOT NULL DEFAULT 0,
			high          REAL NOT NULL DEFAULT 0,
			low           REAL NOT NULL DEFAULT 0,
			close         REAL NOT NULL,
			volume        INTEGER NOT NULL DEFAULT 0,
			daily_return  REAL NOT NULL DEFAULT 0,
			volatility_20 REAL NOT NULL DEFAULT 0,
			sma_20        REAL NOT NULL DEFAULT 0,
			sma_50        REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, date)
		)`)
	return err
}

// FindLatest returns the most recent stored bar for symbol, or nil when the
// symbol has no stored history.
func (s *SQLiteBarStore) FindLatest(ctx context.Context, symbol string) (*models.Bar, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, date, open, high, low, close, volume,
		       daily_return, volatility_20, sma_20, sma_50
		FROM bars WHERE symbol = ? ORDER BY date DESC LIMIT 1`, symbol)

	bar, err := scanBar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest bar for %s: %w", symbol, err)
	}
	return &bar, nil
}

// FindRange returns up to limit bars for symbol, newest first.
func (s *SQLiteBarStore) FindRange(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, open, high, low, close, volume,
		       daily_return, volatility_20, sma_20, sma_50
		FROM bars WHERE symbol = ? ORDER BY date DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar for %s: %w", symbol, err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// Upsert inserts or overwrites the bar keyed by (symbol, date).
func (s *SQLiteBarStore) Upsert(ctx context.Context, bar models.Bar) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close, volume,
		                  daily_return, volatility_20, sma_20, sma_50)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			daily_return = excluded.daily_return,
			volatility_20 = excluded.volatility_20,
			sma_20 = excluded.sma_20,
			sma_50 = excluded.sma_50`,
		bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		bar.DailyReturn, bar.Volatility20, bar.SMA20, bar.SMA50)
	if err != nil {
		return fmt.Errorf("failed to upsert bar %s/%s: %w", bar.Symbol, bar.Date, err)
	}
	return nil
}

// DeleteAll removes every stored bar for symbol.
func (s *SQLiteBarStore) DeleteAll(ctx context.Context, symbol string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bars WHERE symbol = ?`, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bars for %s: %w", symbol, err)
	}
	return res.RowsAffected()
}

// InsertMany inserts a batch of bars in a single transaction.
func (s *SQLiteBarStore) InsertMany(ctx context.Context, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close, volume,
		                  daily_return, volatility_20, sma_20, sma_50)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx,
			bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
			bar.DailyReturn, bar.Volatility20, bar.SMA20, bar.SMA50); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert bar %s/%s: %w", bar.Symbol, bar.Date, err)
		}
	}

	return tx.Commit()
}

// Close closes the database handle.
func (s *SQLiteBarStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBar(row rowScanner) (models.Bar, error) {
	var bar models.Bar
	err := row.Scan(&bar.Symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low,
		&bar.Close, &bar.Volume, &bar.DailyReturn, &bar.Volatility20,
		&bar.SMA20, &bar.SMA50)
	return bar, err
}
