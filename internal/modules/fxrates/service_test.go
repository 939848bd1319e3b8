package fxrates

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
	"github.com/asimoes/retrosim/pkg/logger"
)

type fakeMarket struct {
	candles map[string][]yahoo.Candle
	errs    map[string]error
	calls   []string
}

func (f *fakeMarket) DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	candles, ok := f.candles[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	return candles, nil
}

func day(s string) timeseries.Date { return timeseries.MustParseDate(s) }

func testIndex() []timeseries.Date {
	return timeseries.BusinessDays(day("2025-07-14"), day("2025-07-18"))
}

func newService(market MarketData, pairs map[string]domain.CurrencyPairConfig) *Service {
	if pairs == nil {
		pairs = map[string]domain.CurrencyPairConfig{
			"USD": {Currency: "USD"},
			"HKD": {Currency: "HKD", Symbol: "USDHKD=X", Invert: true},
		}
	}
	return NewService(pairs, market, logger.New(logger.Config{Level: "error"}))
}

func TestLoadSeriesUSDIsConstantOne(t *testing.T) {
	market := &fakeMarket{}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"USD"}, day("2025-07-14"), day("2025-07-18"), testIndex())

	require.Empty(t, result.Messages)
	series := result.SeriesByCurrency["USD"]
	for _, v := range series.Values() {
		assert.Equal(t, 1.0, v)
	}
	// No network call for the unit of account.
	assert.Empty(t, market.calls)
}

func TestLoadSeriesUnconfiguredCurrencyFallsBack(t *testing.T) {
	svc := newService(&fakeMarket{}, nil)

	result := svc.LoadSeries([]string{"JPY"}, day("2025-07-14"), day("2025-07-18"), testIndex())

	require.Len(t, result.Messages, 1)
	assert.Equal(t, domain.LevelWarning, result.Messages[0].Level)
	assert.Contains(t, result.Messages[0].Text, "JPY")

	series := result.SeriesByCurrency["JPY"]
	for _, v := range series.Values() {
		assert.Equal(t, 1.0, v)
	}
}

func TestLoadSeriesInvertsQuotedPairs(t *testing.T) {
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"USDHKD=X": {
			{Date: day("2025-07-14"), Close: 8.0},
			{Date: day("2025-07-16"), Close: 10.0},
		},
	}}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"HKD"}, day("2025-07-14"), day("2025-07-18"), testIndex())
	require.Empty(t, result.Messages)

	series := result.SeriesByCurrency["HKD"]
	v, ok := series.Get(day("2025-07-14"))
	require.True(t, ok)
	assert.InDelta(t, 0.125, v, 1e-12)

	// Gap on the 15th forward-filled from the 14th.
	v, ok = series.Get(day("2025-07-15"))
	require.True(t, ok)
	assert.InDelta(t, 0.125, v, 1e-12)

	v, ok = series.Get(day("2025-07-16"))
	require.True(t, ok)
	assert.InDelta(t, 0.1, v, 1e-12)
}

func TestLoadSeriesDropsNonPositiveBeforeInversion(t *testing.T) {
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"USDHKD=X": {
			{Date: day("2025-07-14"), Close: 0.0}, // bad tick
			{Date: day("2025-07-15"), Close: 8.0},
		},
	}}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"HKD"}, day("2025-07-14"), day("2025-07-18"), testIndex())
	require.Empty(t, result.Messages)

	series := result.SeriesByCurrency["HKD"]
	// The zero tick became missing, then was back-filled from the 15th.
	v, ok := series.Get(day("2025-07-14"))
	require.True(t, ok)
	assert.InDelta(t, 0.125, v, 1e-12)
}

func TestLoadSeriesFetchFailureFallsBack(t *testing.T) {
	market := &fakeMarket{errs: map[string]error{"USDHKD=X": fmt.Errorf("boom")}}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"HKD"}, day("2025-07-14"), day("2025-07-18"), testIndex())

	require.Len(t, result.Messages, 1)
	assert.Equal(t, domain.LevelWarning, result.Messages[0].Level)
	assert.Contains(t, result.Messages[0].Text, "boom")

	series := result.SeriesByCurrency["HKD"]
	for _, v := range series.Values() {
		assert.Equal(t, 1.0, v)
	}
}

func TestLoadSeriesAllMissingFallsBack(t *testing.T) {
	// Quotes exist but none land on the index and all are non-positive.
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"USDHKD=X": {{Date: day("2025-07-14"), Close: -1.0}},
	}}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"HKD"}, day("2025-07-14"), day("2025-07-18"), testIndex())

	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0].Text, "no usable data")

	series := result.SeriesByCurrency["HKD"]
	for _, v := range series.Values() {
		assert.Equal(t, 1.0, v)
	}
}

func TestLoadSeriesDeduplicatesCurrencies(t *testing.T) {
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"USDHKD=X": {{Date: day("2025-07-14"), Close: 8.0}},
	}}
	svc := newService(market, nil)

	result := svc.LoadSeries([]string{"HKD", "USD", "HKD"}, day("2025-07-14"), day("2025-07-18"), testIndex())

	assert.Len(t, result.SeriesByCurrency, 2)
	assert.Equal(t, []string{"USDHKD=X"}, market.calls)
}
