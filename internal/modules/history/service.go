// Package history loads per-instrument USD-denominated price history,
// converting native-currency closes with the normalized rate series.
package history

import (
	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// MarketData supplies raw daily close series for an instrument.
type MarketData interface {
	DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error)
}

// Service loads price history in USD for a collection of companies.
type Service struct {
	market MarketData
	cache  *FetchCache
	log    zerolog.Logger
}

// NewService creates a new price history service. cache is optional;
// nil disables local caching.
func NewService(market MarketData, cache *FetchCache, log zerolog.Logger) *Service {
	return &Service{
		market: market,
		cache:  cache,
		log:    log.With().Str("service", "history").Logger(),
	}
}

// LoadUSDHistory fetches each company's native close history over
// [start, end] and converts it to USD. A failed fetch degrades to an
// empty column with a warning; the run itself never fails.
func (s *Service) LoadUSDHistory(companies []domain.Company, start, end timeseries.Date, fx map[string]timeseries.Series) (PriceTable, []domain.Message) {
	table := NewPriceTable()
	var messages []domain.Message

	seen := make(map[string]bool, len(companies))
	for _, company := range companies {
		if seen[company.Ticker] {
			continue
		}
		seen[company.Ticker] = true

		series, msgs := s.loadSingle(company, start, end, fx)
		table.Set(company.Ticker, series)
		messages = append(messages, msgs...)
	}

	return table, messages
}

// loadSingle builds one instrument's USD close series.
func (s *Service) loadSingle(company domain.Company, start, end timeseries.Date, fx map[string]timeseries.Series) (timeseries.Series, []domain.Message) {
	var messages []domain.Message

	candles, err := s.fetchCloses(company.Ticker, start, end)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", company.Ticker).Msg("History fetch failed")
		messages = append(messages,
			domain.Warnf("failed to fetch history for %s: %v", company.Ticker, err))
		return timeseries.Series{}, messages
	}

	var native timeseries.Series
	for _, candle := range candles {
		native.Put(candle.Date, candle.Close)
	}

	fxSeries, ok := fx[company.Currency]
	if !ok {
		messages = append(messages,
			domain.Warnf("no rate series found for %s; assuming 1.0 for %s", company.Currency, company.Ticker))
		return native, messages
	}

	// Align the conversion series onto the instrument's own trading
	// days: forward-fill bridges FX holidays, back-fill covers a rate
	// series that starts later than the price history.
	aligned := fxSeries.AlignTo(native.Dates())
	return native.Mul(aligned), messages
}

// fetchCloses goes to the market, falling back to locally cached data
// when the fetch fails. Stale data beats no data; cache failures are
// logged and otherwise ignored.
func (s *Service) fetchCloses(ticker string, start, end timeseries.Date) ([]yahoo.Candle, error) {
	candles, err := s.market.DailyCloses(ticker, start, end)
	if err == nil {
		if s.cache != nil {
			if cacheErr := s.cache.Store(ticker, candles); cacheErr != nil {
				s.log.Warn().Err(cacheErr).Str("ticker", ticker).Msg("Failed to cache closes")
			}
		}
		return candles, nil
	}

	if s.cache != nil {
		if cached, cacheErr := s.cache.Load(ticker, start, end); cacheErr == nil && len(cached) > 0 {
			s.log.Warn().Err(err).Str("ticker", ticker).Int("points", len(cached)).
				Msg("Fetch failed, using cached closes")
			return cached, nil
		}
	}

	return nil, err
}
