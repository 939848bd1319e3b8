package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// FetchCache persists fetched close series, one SQLite file per
// symbol, so an unreachable market data source degrades to stale local
// data instead of an empty simulation.
type FetchCache struct {
	dir string
	log zerolog.Logger
}

// NewFetchCache creates a cache rooted at dir.
func NewFetchCache(dir string, log zerolog.Logger) *FetchCache {
	return &FetchCache{
		dir: dir,
		log: log.With().Str("component", "fetch_cache").Logger(),
	}
}

// Store upserts candles into the symbol's cache database.
func (c *FetchCache) Store(symbol string, candles []yahoo.Candle) error {
	db, err := c.open(symbol, true)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (date, close_price)
		VALUES (?, ?)
		ON CONFLICT (date) DO UPDATE SET close_price = excluded.close_price
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for _, candle := range candles {
		if _, err := stmt.Exec(candle.Date.String(), candle.Close); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to cache close for %s: %w", symbol, err)
		}
	}

	return tx.Commit()
}

// Load reads cached candles for the inclusive [start, end] range.
func (c *FetchCache) Load(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error) {
	db, err := c.open(symbol, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT date, close_price
		FROM daily_prices
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query cached closes: %w", err)
	}
	defer rows.Close()

	var candles []yahoo.Candle
	for rows.Next() {
		var day string
		var close float64
		if err := rows.Scan(&day, &close); err != nil {
			return nil, fmt.Errorf("failed to scan cached close: %w", err)
		}
		date, err := timeseries.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("corrupt cache entry for %s: %w", symbol, err)
		}
		candles = append(candles, yahoo.Candle{Date: date, Close: close})
	}

	return candles, rows.Err()
}

// open opens the per-symbol cache database, creating it when writing.
func (c *FetchCache) open(symbol string, create bool) (*sql.DB, error) {
	if create {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// AAPL.US -> AAPL_US, USDHKD=X -> USDHKD_X
	fileSymbol := strings.NewReplacer(".", "_", "=", "_", "/", "_").Replace(symbol)
	dbPath := filepath.Join(c.dir, fileSymbol+".db")

	if !create {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("no cache for %s", symbol)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache for %s: %w", symbol, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			date        TEXT PRIMARY KEY,
			close_price REAL NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure cache schema for %s: %w", symbol, err)
	}

	return db, nil
}
