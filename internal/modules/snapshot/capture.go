package snapshot

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// captureLookbackDays covers holidays and weekends around the purchase
// date when looking for the nearest earlier close.
const captureLookbackDays = 10

// MarketData provides daily closes for snapshot capture.
type MarketData interface {
	DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error)
}

// CaptureService builds an initial-price snapshot from market data and
// persists it through the repository.
type CaptureService struct {
	repo   *Repository
	market MarketData
	log    zerolog.Logger
}

// NewCaptureService creates a new capture service
func NewCaptureService(repo *Repository, market MarketData, log zerolog.Logger) *CaptureService {
	return &CaptureService{
		repo:   repo,
		market: market,
		log:    log.With().Str("component", "snapshot_capture").Logger(),
	}
}

// Capture fetches, for each company, the last close on or before the
// purchase date and stores the result. Companies whose quote cannot be
// fetched are skipped with a warning; the snapshot is still saved for
// the ones that resolved.
func (s *CaptureService) Capture(purchaseDate timeseries.Date, companies []domain.Company) (map[string]float64, []domain.Message, error) {
	var messages []domain.Message
	prices := make(map[string]float64, len(companies))

	start := purchaseDate.Add(-captureLookbackDays)
	for _, company := range companies {
		candles, err := s.market.DailyCloses(company.Ticker, start, purchaseDate)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", company.Ticker).Msg("Snapshot fetch failed")
			messages = append(messages,
				domain.Warnf("failed to fetch a close for %s at %s: %v; skipping it", company.Ticker, purchaseDate, err))
			continue
		}

		close, ok := lastCloseAtOrBefore(candles, purchaseDate)
		if !ok {
			messages = append(messages,
				domain.Warnf("no close found for %s on or before %s; skipping it", company.Ticker, purchaseDate))
			continue
		}
		prices[company.Ticker] = close
	}

	if len(prices) == 0 {
		return nil, messages, fmt.Errorf("no prices captured for %s", purchaseDate)
	}

	if err := s.repo.Save(purchaseDate, prices); err != nil {
		return nil, messages, fmt.Errorf("failed to save snapshot for %s: %w", purchaseDate, err)
	}

	s.log.Info().
		Str("purchase_date", purchaseDate.String()).
		Int("tickers", len(prices)).
		Msg("Snapshot captured")
	return prices, messages, nil
}

func lastCloseAtOrBefore(candles []yahoo.Candle, date timeseries.Date) (float64, bool) {
	var close float64
	found := false
	for _, candle := range candles {
		if candle.Date.After(date) {
			continue
		}
		if candle.Close <= 0 {
			continue
		}
		close = candle.Close
		found = true
	}
	return close, found
}
