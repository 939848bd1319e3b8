// Package fxrates builds per-currency USD conversion series aligned to
// the simulation's business-day index.
package fxrates

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// MarketData supplies raw daily close series for a quote symbol.
type MarketData interface {
	DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error)
}

// Result carries the conversion series and every degraded-path message
// accumulated while building them.
type Result struct {
	SeriesByCurrency map[string]timeseries.Series `json:"series_by_currency"`
	Messages         []domain.Message             `json:"messages"`
}

// Service fetches currency rates and converts them into USD-per-unit
// series. Rate unavailability never fails a run; it degrades to a
// constant parity series with an explicit warning.
type Service struct {
	pairs  map[string]domain.CurrencyPairConfig
	market MarketData
	log    zerolog.Logger
}

// NewService creates a new currency rates service
func NewService(pairs map[string]domain.CurrencyPairConfig, market MarketData, log zerolog.Logger) *Service {
	return &Service{
		pairs:  pairs,
		market: market,
		log:    log.With().Str("service", "fxrates").Logger(),
	}
}

// LoadSeries produces one USD conversion series per requested currency,
// projected onto the given business-day index.
func (s *Service) LoadSeries(currencies []string, start, end timeseries.Date, index []timeseries.Date) Result {
	result := Result{
		SeriesByCurrency: make(map[string]timeseries.Series, len(currencies)),
	}

	// Deterministic order regardless of how the caller collected the set.
	unique := lo.Uniq(currencies)
	sort.Strings(unique)

	for _, currency := range unique {
		if currency == "USD" {
			result.SeriesByCurrency[currency] = timeseries.Constant(index, 1.0)
			continue
		}

		pair, ok := s.pairs[currency]
		if !ok || pair.Symbol == "" {
			s.log.Warn().Str("currency", currency).Msg("No currency pair configured")
			result.Messages = append(result.Messages,
				domain.Warnf("no currency pair configured for %s; assuming parity 1.0", currency))
			result.SeriesByCurrency[currency] = timeseries.Constant(index, 1.0)
			continue
		}

		series, msgs := s.fetchSeries(pair, start, end, index)
		result.SeriesByCurrency[currency] = series
		result.Messages = append(result.Messages, msgs...)
	}

	return result
}

// fetchSeries fetches and normalizes one configured pair. Every failure
// path substitutes a constant 1.0 series and reports a warning.
func (s *Service) fetchSeries(pair domain.CurrencyPairConfig, start, end timeseries.Date, index []timeseries.Date) (timeseries.Series, []domain.Message) {
	candles, err := s.market.DailyCloses(pair.Symbol, start, end)
	if err != nil {
		s.log.Warn().Err(err).Str("currency", pair.Currency).Str("symbol", pair.Symbol).Msg("Rate fetch failed")
		return timeseries.Constant(index, 1.0), []domain.Message{
			domain.Warnf("failed to fetch %s/USD rates (%s): %v; assuming 1.0", pair.Currency, pair.Symbol, err),
		}
	}

	var raw timeseries.Series
	for _, candle := range candles {
		value := candle.Close
		// Non-positive quotes become missing before inversion so a bad
		// tick cannot turn into a division artifact.
		if value <= 0 {
			value = timeseries.Missing()
		}
		raw.Put(candle.Date, value)
	}
	if pair.Invert {
		raw = raw.Map(func(v float64) float64 { return 1 / v })
	}

	aligned := raw.Reindex(index).ForwardFill()
	if aligned.AllMissing() {
		s.log.Warn().Str("currency", pair.Currency).Str("symbol", pair.Symbol).Msg("Rate series has no usable data")
		return timeseries.Constant(index, 1.0), []domain.Message{
			domain.Warnf("rate series for %s (%s) has no usable data; assuming 1.0", pair.Currency, pair.Symbol),
		}
	}

	// A still-missing head takes the first available value.
	return aligned.BackFill(), nil
}
