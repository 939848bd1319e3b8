package simulation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/allocation"
	"github.com/asimoes/retrosim/internal/modules/fxrates"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/modules/valuation"
	"github.com/asimoes/retrosim/internal/timeseries"
)

type fakeMarket struct {
	candles map[string][]yahoo.Candle
}

func (f *fakeMarket) DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error) {
	return f.candles[symbol], nil
}

type fakeSnapshots struct {
	prices   map[string]float64
	messages []domain.Message
}

func (f *fakeSnapshots) Load(purchaseDate timeseries.Date, companies []domain.Company) (map[string]float64, []domain.Message) {
	return f.prices, f.messages
}

func testService(companies []domain.Company, pairs map[string]domain.CurrencyPairConfig, market *fakeMarket, snapshots SnapshotStore) *Service {
	log := zerolog.Nop()
	return NewService(
		companies,
		snapshots,
		fxrates.NewService(pairs, market, log),
		allocation.NewAllocator(log),
		history.NewService(market, nil, log),
		valuation.NewService(log),
		log,
	)
}

func TestRunEndToEnd(t *testing.T) {
	purchaseDate := timeseries.MustParseDate("2025-07-15")
	companies := []domain.Company{
		{Name: "Baidu", Ticker: "BIDU", TargetWeight: 100, Currency: "USD"},
	}
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"BIDU": {
			{Date: purchaseDate, Close: 100},
			{Date: timeseries.MustParseDate("2025-07-16"), Close: 110},
		},
	}}
	snapshots := &fakeSnapshots{prices: map[string]float64{"BIDU": 100}}

	svc := testService(companies, map[string]domain.CurrencyPairConfig{}, market, snapshots)

	result, err := svc.Run(Input{TotalCashUSD: 1000, PurchaseDate: purchaseDate})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Allocation.Rows, 1)
	assert.Equal(t, 10, result.Allocation.Rows[0].Quantity)
	assert.InDelta(t, 0.0, result.Allocation.FinalCashUSD, 1e-9)

	// Last close forward-fills to the end of the index.
	assert.InDelta(t, 1000.0, result.Summary.InvestedUSD, 1e-9)
	assert.InDelta(t, 1100.0, result.Summary.CurrentValueUSD, 1e-9)

	require.NotEmpty(t, result.ValueSeries)
	assert.InDelta(t, 1000.0, result.ValueSeries[0], 1e-9)
	assert.InDelta(t, 1100.0, result.ValueSeries[len(result.ValueSeries)-1], 1e-9)
	assert.Len(t, result.ValueDates, len(result.ValueSeries))

	// Unconfigured USD needs no pair and produces no noise.
	assert.Empty(t, result.Messages)
}

func TestRunIdenticalInputsMatchApartFromRunID(t *testing.T) {
	purchaseDate := timeseries.MustParseDate("2025-07-15")
	companies := []domain.Company{
		{Name: "Baidu", Ticker: "BIDU", TargetWeight: 100, Currency: "USD"},
	}
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"BIDU": {{Date: purchaseDate, Close: 100}},
	}}
	snapshots := &fakeSnapshots{prices: map[string]float64{"BIDU": 100}}

	svc := testService(companies, map[string]domain.CurrencyPairConfig{}, market, snapshots)
	input := Input{TotalCashUSD: 1000, PurchaseDate: purchaseDate}

	first, err := svc.Run(input)
	require.NoError(t, err)
	second, err := svc.Run(input)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	second.RunID = first.RunID
	assert.Equal(t, first, second)
}

func TestRunFutureDateFails(t *testing.T) {
	svc := testService(nil, nil, &fakeMarket{}, &fakeSnapshots{})

	_, err := svc.Run(Input{TotalCashUSD: 1000, PurchaseDate: timeseries.Today().Add(7)})
	assert.Error(t, err)
}

func TestRunSurfacesStageMessages(t *testing.T) {
	purchaseDate := timeseries.MustParseDate("2025-07-15")
	companies := []domain.Company{
		{Name: "Baidu", Ticker: "BIDU", TargetWeight: 50, Currency: "USD"},
		{Name: "Alibaba", Ticker: "BABA", TargetWeight: 50, Currency: "USD"},
	}
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"BIDU": {{Date: purchaseDate, Close: 100}},
		"BABA": {{Date: purchaseDate, Close: 50}},
	}}
	// BABA is absent from the snapshot and gets excluded upstream.
	snapshots := &fakeSnapshots{
		prices:   map[string]float64{"BIDU": 100},
		messages: []domain.Message{domain.Warnf("ticker BABA missing from the %s snapshot; excluding it", purchaseDate)},
	}

	svc := testService(companies, map[string]domain.CurrencyPairConfig{}, market, snapshots)

	result, err := svc.Run(Input{TotalCashUSD: 1000, PurchaseDate: purchaseDate})
	require.NoError(t, err)

	// Snapshot warning plus the allocator's missing-price error.
	require.Len(t, result.Messages, 2)
	assert.Equal(t, domain.LevelWarning, result.Messages[0].Level)
	assert.Equal(t, domain.LevelError, result.Messages[1].Level)
	require.Len(t, result.Allocation.Rows, 1)
	assert.Equal(t, "BIDU", result.Allocation.Rows[0].Company.Ticker)
}
