// Package valuation turns an allocation and a USD price table into a
// daily portfolio value series and summary statistics.
package valuation

import (
	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/timeseries"
	"github.com/asimoes/retrosim/pkg/formulas"
)

// smoothingWindow is the SMA length for the chart overlay series.
const smoothingWindow = 5

// riskFreeRate is the annual rate used for the Sharpe ratio.
const riskFreeRate = 0.0

// Position is the current state of one holding.
type Position struct {
	Company          domain.Company `json:"company"`
	Quantity         int            `json:"quantity"`
	PurchasePriceUSD float64        `json:"purchase_price_usd"`
	CurrentPriceUSD  float64        `json:"current_price_usd"`
	InvestedUSD      float64        `json:"invested_usd"`
	CurrentValueUSD  float64        `json:"current_value_usd"`
	GainUSD          float64        `json:"gain_usd"`
	VariationPct     float64        `json:"variation_pct"`
}

// Stats summarizes the behaviour of the portfolio value series.
// Pointers are nil when the series is too short to compute a metric.
type Stats struct {
	CumulativeReturn     *float64  `json:"cumulative_return,omitempty"`
	AnnualizedVolatility *float64  `json:"annualized_volatility,omitempty"`
	MaxDrawdown          *float64  `json:"max_drawdown,omitempty"`
	SharpeRatio          *float64  `json:"sharpe_ratio,omitempty"`
	SmoothedValues       []float64 `json:"smoothed_values"`
}

// Service computes the valuation outputs of a simulation run.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new valuation service
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("component", "valuation").Logger()}
}

// ValueSeries computes the daily portfolio value over the index:
// the sum of quantity times USD price per day. The price table is
// expected to be fully filled; a still-missing point contributes
// nothing to that day.
func (s *Service) ValueSeries(rows []domain.AllocationRow, prices history.PriceTable, index []timeseries.Date) timeseries.Series {
	values := timeseries.Constant(index, 0)

	for _, row := range rows {
		if row.Quantity == 0 {
			continue
		}
		column, ok := prices.Column(row.Company.Ticker)
		if !ok {
			s.log.Warn().Str("ticker", row.Company.Ticker).Msg("No price column for holding")
			continue
		}
		for _, day := range index {
			price, ok := column.Get(day)
			if !ok {
				continue
			}
			current, _ := values.Get(day)
			values.Put(day, current+float64(row.Quantity)*price)
		}
	}

	return values
}

// Summary builds the per-position view and portfolio totals from the
// latest known prices. A holding without a latest price is valued at
// its purchase price, so a dead quote never zeroes a position.
func (s *Service) Summary(rows []domain.AllocationRow, latestPrices map[string]float64) (domain.PortfolioSummary, []Position) {
	positions := make([]Position, 0, len(rows))
	var summary domain.PortfolioSummary

	for _, row := range rows {
		currentPrice, ok := latestPrices[row.Company.Ticker]
		if !ok {
			currentPrice = row.PriceUSD
		}

		invested := float64(row.Quantity) * row.PriceUSD
		currentValue := float64(row.Quantity) * currentPrice

		position := Position{
			Company:          row.Company,
			Quantity:         row.Quantity,
			PurchasePriceUSD: row.PriceUSD,
			CurrentPriceUSD:  currentPrice,
			InvestedUSD:      invested,
			CurrentValueUSD:  currentValue,
			GainUSD:          currentValue - invested,
		}
		if invested != 0 {
			position.VariationPct = position.GainUSD / invested * 100
		}
		positions = append(positions, position)

		summary.InvestedUSD += invested
		summary.CurrentValueUSD += currentValue
	}

	return summary, positions
}

// Stats derives return and risk metrics from the value series.
func (s *Service) Stats(values timeseries.Series) Stats {
	raw := values.Values()

	return Stats{
		CumulativeReturn:     formulas.CumulativeReturn(raw),
		AnnualizedVolatility: formulas.CalculateVolatility(raw),
		MaxDrawdown:          formulas.CalculateMaxDrawdown(raw),
		SharpeRatio:          formulas.CalculateSharpeFromPrices(raw, riskFreeRate),
		SmoothedValues:       formulas.SmoothSMA(raw, smoothingWindow),
	}
}
