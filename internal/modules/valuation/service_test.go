package valuation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/timeseries"
)

func day(s string) timeseries.Date { return timeseries.MustParseDate(s) }

func seriesOf(points map[string]float64) timeseries.Series {
	var s timeseries.Series
	for d, v := range points {
		s.Put(day(d), v)
	}
	return s
}

func TestValueSeries(t *testing.T) {
	index := []timeseries.Date{day("2025-07-15"), day("2025-07-16")}

	table := history.NewPriceTable()
	table.Set("BIDU", seriesOf(map[string]float64{"2025-07-15": 100, "2025-07-16": 110}))
	table.Set("BABA", seriesOf(map[string]float64{"2025-07-15": 50, "2025-07-16": 40}))

	rows := []domain.AllocationRow{
		{Company: domain.Company{Ticker: "BIDU"}, Quantity: 2},
		{Company: domain.Company{Ticker: "BABA"}, Quantity: 3},
	}

	svc := NewService(zerolog.Nop())
	values := svc.ValueSeries(rows, table, index)

	v, ok := values.Get(day("2025-07-15"))
	require.True(t, ok)
	assert.InDelta(t, 350.0, v, 1e-9)

	v, ok = values.Get(day("2025-07-16"))
	require.True(t, ok)
	assert.InDelta(t, 340.0, v, 1e-9)
}

func TestValueSeriesSkipsZeroQuantity(t *testing.T) {
	index := []timeseries.Date{day("2025-07-15")}

	table := history.NewPriceTable()
	table.Set("BIDU", seriesOf(map[string]float64{"2025-07-15": 100}))

	rows := []domain.AllocationRow{
		{Company: domain.Company{Ticker: "BIDU"}, Quantity: 0},
	}

	svc := NewService(zerolog.Nop())
	values := svc.ValueSeries(rows, table, index)

	v, _ := values.Get(day("2025-07-15"))
	assert.Zero(t, v)
}

func TestSummary(t *testing.T) {
	rows := []domain.AllocationRow{
		{Company: domain.Company{Ticker: "BIDU"}, Quantity: 2, PriceUSD: 100},
		{Company: domain.Company{Ticker: "BABA"}, Quantity: 4, PriceUSD: 50},
	}
	latest := map[string]float64{"BIDU": 110, "BABA": 45}

	svc := NewService(zerolog.Nop())
	summary, positions := svc.Summary(rows, latest)

	assert.InDelta(t, 400.0, summary.InvestedUSD, 1e-9)
	assert.InDelta(t, 400.0, summary.CurrentValueUSD, 1e-9)
	assert.InDelta(t, 0.0, summary.GainUSD(), 1e-9)

	require.Len(t, positions, 2)
	assert.InDelta(t, 20.0, positions[0].GainUSD, 1e-9)
	assert.InDelta(t, 10.0, positions[0].VariationPct, 1e-9)
	assert.InDelta(t, -20.0, positions[1].GainUSD, 1e-9)
	assert.InDelta(t, -10.0, positions[1].VariationPct, 1e-9)
}

func TestSummaryFallsBackToPurchasePrice(t *testing.T) {
	rows := []domain.AllocationRow{
		{Company: domain.Company{Ticker: "BIDU"}, Quantity: 3, PriceUSD: 100},
	}

	svc := NewService(zerolog.Nop())
	summary, positions := svc.Summary(rows, map[string]float64{})

	assert.InDelta(t, 300.0, summary.CurrentValueUSD, 1e-9)
	assert.Zero(t, positions[0].GainUSD)
	assert.Zero(t, positions[0].VariationPct)
}

func TestSummaryZeroInvested(t *testing.T) {
	svc := NewService(zerolog.Nop())
	summary, _ := svc.Summary(nil, nil)

	assert.Zero(t, summary.VariationPct())
}

func TestStats(t *testing.T) {
	index := []timeseries.Date{
		day("2025-07-14"), day("2025-07-15"), day("2025-07-16"),
		day("2025-07-17"), day("2025-07-18"), day("2025-07-21"),
	}
	values := timeseries.Constant(index, 0)
	for i, v := range []float64{1000, 1050, 990, 1020, 1100, 1080} {
		values.Put(index[i], v)
	}

	svc := NewService(zerolog.Nop())
	stats := svc.Stats(values)

	require.NotNil(t, stats.CumulativeReturn)
	assert.InDelta(t, 0.08, *stats.CumulativeReturn, 1e-9)

	require.NotNil(t, stats.MaxDrawdown)
	// Peak 1050, trough 990.
	assert.InDelta(t, 60.0/1050.0, *stats.MaxDrawdown, 1e-9)

	require.NotNil(t, stats.AnnualizedVolatility)
	assert.Positive(t, *stats.AnnualizedVolatility)

	require.NotNil(t, stats.SharpeRatio)
	assert.Len(t, stats.SmoothedValues, len(index))
}

func TestStatsShortSeries(t *testing.T) {
	svc := NewService(zerolog.Nop())
	stats := svc.Stats(timeseries.Series{})

	assert.Nil(t, stats.CumulativeReturn)
	assert.Nil(t, stats.MaxDrawdown)
	assert.Nil(t, stats.SharpeRatio)
	assert.Empty(t, stats.SmoothedValues)
}
