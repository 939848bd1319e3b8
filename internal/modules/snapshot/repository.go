// Package snapshot persists the per-purchase-date initial price table
// the allocator consumes, and captures new snapshots from market data.
package snapshot

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/database"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// Repository stores initial-price snapshots in SQLite, keyed by
// purchase date and ticker.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "snapshot_repo").Logger(),
	}
}

// Save upserts the local-currency prices for a purchase date.
func (r *Repository) Save(purchaseDate timeseries.Date, prices map[string]float64) error {
	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO initial_prices (purchase_date, ticker, price_local)
		VALUES (?, ?, ?)
		ON CONFLICT (purchase_date, ticker)
		DO UPDATE SET price_local = excluded.price_local, captured_at = datetime('now')
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for ticker, price := range prices {
		if _, err := stmt.Exec(purchaseDate.String(), ticker, price); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save price for %s: %w", ticker, err)
		}
	}

	return tx.Commit()
}

// Load returns the local-currency initial prices for the companies at
// a purchase date. An absent snapshot is an error-level message (the
// whole allocation would be empty); a single missing ticker only drops
// that company with a warning. Storage failures surface the same way,
// so callers deal with one message stream.
func (r *Repository) Load(purchaseDate timeseries.Date, companies []domain.Company) (map[string]float64, []domain.Message) {
	var messages []domain.Message

	rows, err := r.db.Query(`
		SELECT ticker, price_local
		FROM initial_prices
		WHERE purchase_date = ?
	`, purchaseDate.String())
	if err != nil {
		r.log.Error().Err(err).Msg("Snapshot query failed")
		return nil, []domain.Message{domain.Errorf("failed to read snapshot for %s: %v", purchaseDate, err)}
	}
	defer rows.Close()

	stored := make(map[string]float64)
	for rows.Next() {
		var ticker string
		var price float64
		if err := rows.Scan(&ticker, &price); err != nil {
			return nil, []domain.Message{domain.Errorf("failed to read snapshot for %s: %v", purchaseDate, err)}
		}
		stored[ticker] = price
	}
	if err := rows.Err(); err != nil {
		return nil, []domain.Message{domain.Errorf("failed to read snapshot for %s: %v", purchaseDate, err)}
	}

	if len(stored) == 0 {
		return nil, []domain.Message{domain.Errorf("no initial price snapshot for %s", purchaseDate)}
	}

	prices := make(map[string]float64, len(companies))
	for _, company := range companies {
		price, ok := stored[company.Ticker]
		if !ok {
			messages = append(messages,
				domain.Warnf("ticker %s missing from the %s snapshot; excluding it", company.Ticker, purchaseDate))
			continue
		}
		prices[company.Ticker] = price
	}

	return prices, messages
}
