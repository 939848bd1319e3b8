package snapshot

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/database"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

type fakeMarket struct {
	candles map[string][]yahoo.Candle
	errs    map[string]error
}

func (f *fakeMarket) DailyCloses(symbol string, start, end timeseries.Date) ([]yahoo.Candle, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.candles[symbol], nil
}

func testCapture(t *testing.T, market MarketData) (*CaptureService, *Repository) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	repo := NewRepository(db, zerolog.Nop())
	return NewCaptureService(repo, market, zerolog.Nop()), repo
}

func TestCaptureStoresLastCloseAtOrBefore(t *testing.T) {
	date := timeseries.MustParseDate("2025-07-15")
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"BIDU": {
			{Date: timeseries.MustParseDate("2025-07-11"), Close: 85.0},
			{Date: timeseries.MustParseDate("2025-07-14"), Close: 86.5},
		},
	}}
	capture, repo := testCapture(t, market)

	companies := []domain.Company{{Ticker: "BIDU"}}
	prices, messages, err := capture.Capture(date, companies)
	require.NoError(t, err)

	assert.Empty(t, messages)
	assert.Equal(t, 86.5, prices["BIDU"])

	stored, _ := repo.Load(date, companies)
	assert.Equal(t, 86.5, stored["BIDU"])
}

func TestCaptureSkipsFailedTickers(t *testing.T) {
	date := timeseries.MustParseDate("2025-07-15")
	market := &fakeMarket{
		candles: map[string][]yahoo.Candle{
			"BIDU": {{Date: date, Close: 86.5}},
		},
		errs: map[string]error{"BABA": errors.New("rate limited")},
	}
	capture, _ := testCapture(t, market)

	prices, messages, err := capture.Capture(date, []domain.Company{
		{Ticker: "BIDU"},
		{Ticker: "BABA"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"BIDU": 86.5}, prices)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.LevelWarning, messages[0].Level)
	assert.Contains(t, messages[0].Text, "BABA")
}

func TestCaptureIgnoresNonPositiveCloses(t *testing.T) {
	date := timeseries.MustParseDate("2025-07-15")
	market := &fakeMarket{candles: map[string][]yahoo.Candle{
		"BIDU": {
			{Date: timeseries.MustParseDate("2025-07-14"), Close: 86.5},
			{Date: date, Close: 0},
		},
	}}
	capture, _ := testCapture(t, market)

	prices, _, err := capture.Capture(date, []domain.Company{{Ticker: "BIDU"}})
	require.NoError(t, err)
	assert.Equal(t, 86.5, prices["BIDU"])
}

func TestCaptureFailsWhenNothingResolves(t *testing.T) {
	market := &fakeMarket{errs: map[string]error{"BIDU": errors.New("offline")}}
	capture, _ := testCapture(t, market)

	_, messages, err := capture.Capture(timeseries.MustParseDate("2025-07-15"), []domain.Company{{Ticker: "BIDU"}})
	assert.Error(t, err)
	assert.Len(t, messages, 1)
}
