// Package allocation turns target weights, a cash budget and USD
// purchase prices into integer share counts, with a full audit log of
// every cash-distribution decision.
package allocation

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// eps tolerates floating-point drift when comparing remaining cash
// against instrument prices.
const eps = 1e-6

// Params are the inputs to one allocation run. The allocator is a pure
// function of these values.
type Params struct {
	Companies          []domain.Company
	TotalCashUSD       float64
	PurchaseDate       timeseries.Date
	InitialPricesLocal map[string]float64
	FXSeriesByCurrency map[string]timeseries.Series
}

// Allocator distributes the available cash following target weights and
// integer-share rounding rules.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a new allocator
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{
		log: log.With().Str("service", "allocation").Logger(),
	}
}

// Allocate resolves USD purchase prices, assigns initial integer
// quantities and then distributes the remaining cash one unit at a
// time, always to the most underweight affordable instrument. Data
// problems never abort the run: a company without a resolvable
// positive USD price is dropped with an error message, every other
// anomaly degrades to a warning with a documented fallback.
func (a *Allocator) Allocate(p Params) domain.AllocationResult {
	result := domain.AllocationResult{
		InitialPriceUSD: make(map[string]float64),
	}

	for _, company := range p.Companies {
		localPrice, ok := p.InitialPricesLocal[company.Ticker]
		if !ok {
			a.log.Error().Str("ticker", company.Ticker).Msg("No initial price in snapshot")
			result.Messages = append(result.Messages,
				domain.Errorf("ticker %s has no initial price in the snapshot; excluding it", company.Ticker))
			continue
		}

		fxRate, fxMsgs := a.resolveFXRate(company, p.FXSeriesByCurrency, p.PurchaseDate)
		result.Messages = append(result.Messages, fxMsgs...)

		priceUSD := localPrice * fxRate
		if math.IsNaN(priceUSD) || priceUSD <= 0 {
			a.log.Error().Str("ticker", company.Ticker).Float64("price_usd", priceUSD).Msg("Invalid initial price")
			result.Messages = append(result.Messages,
				domain.Errorf("invalid initial price for %s; excluding it", company.Ticker))
			continue
		}

		targetUSD := p.TotalCashUSD * company.TargetWeight / 100
		exact := targetUSD / priceUSD
		quantity := int(exact) // truncation toward zero
		residual := exact - float64(quantity)

		result.InitialPriceUSD[company.Ticker] = priceUSD
		result.Rows = append(result.Rows, domain.AllocationRow{
			Company:         company,
			LocalPrice:      localPrice,
			FXRate:          fxRate,
			PriceUSD:        priceUSD,
			TargetUSD:       targetUSD,
			ExactQuantity:   exact,
			InitialQuantity: quantity,
			Quantity:        quantity,
			InitialResidual: residual,
			Residual:        residual,
		})
	}

	if len(result.Rows) == 0 {
		result.InitialCashUSD = p.TotalCashUSD
		result.FinalCashUSD = p.TotalCashUSD
		return result
	}

	cash := p.TotalCashUSD
	minPrice := math.Inf(1)
	for _, row := range result.Rows {
		cash -= float64(row.Quantity) * row.PriceUSD
		minPrice = math.Min(minPrice, row.PriceUSD)
	}
	result.InitialCashUSD = cash

	result.Events, cash = a.distribute(result.Rows, cash, minPrice)
	result.FinalCashUSD = cash

	for i := range result.Rows {
		row := &result.Rows[i]
		row.InvestedUSD = float64(row.Quantity) * row.PriceUSD
		row.Residual = row.TargetUSD/row.PriceUSD - float64(row.Quantity)
	}

	a.log.Info().
		Int("companies", len(result.Rows)).
		Int("extra_purchases", len(result.Events)).
		Float64("final_cash_usd", cash).
		Msg("Allocation complete")

	return result
}

// distribute runs the greedy one-unit-at-a-time rebalancing loop.
// Each iteration buys one share of the most underweight instrument
// still affordable, so remaining cash strictly decreases by at least
// minPrice and termination is guaranteed.
func (a *Allocator) distribute(rows []domain.AllocationRow, cash, minPrice float64) ([]domain.PurchaseEvent, float64) {
	events := []domain.PurchaseEvent{}

	for cash+eps >= minPrice {
		best := -1
		var bestGap float64
		for i, row := range rows {
			if row.PriceUSD > cash+eps {
				continue
			}
			gap := row.TargetUSD - float64(row.Quantity)*row.PriceUSD
			// Largest gap wins; equal gaps prefer the cheaper
			// instrument to conserve cash for further rounds.
			if best == -1 || gap > bestGap || (gap == bestGap && row.PriceUSD < rows[best].PriceUSD) {
				best = i
				bestGap = gap
			}
		}

		if best == -1 {
			break // nothing affordable
		}
		if bestGap <= 0 {
			break // every affordable instrument is at or above target
		}

		row := &rows[best]
		cashBefore := cash
		cash -= row.PriceUSD
		row.Quantity++
		gapAfter := row.TargetUSD - float64(row.Quantity)*row.PriceUSD

		events = append(events, domain.PurchaseEvent{
			Company:       row.Company,
			UnitPriceUSD:  row.PriceUSD,
			CashBeforeUSD: cashBefore,
			CashAfterUSD:  cash,
			GapBeforeUSD:  bestGap,
			GapAfterUSD:   gapAfter,
			QuantityDelta: 1,
		})
	}

	return events, cash
}

// resolveFXRate extracts the conversion rate effective at-or-before the
// purchase date. A missing series degrades to parity; a series that
// starts after the purchase date degrades to its last known value.
func (a *Allocator) resolveFXRate(company domain.Company, fx map[string]timeseries.Series, purchaseDate timeseries.Date) (float64, []domain.Message) {
	series, ok := fx[company.Currency]
	if !ok || series.Len() == 0 {
		return 1.0, []domain.Message{
			domain.Warnf("no rate series for %s; using 1.0 for %s", company.Currency, company.Ticker),
		}
	}

	if rate, ok := series.AsOf(purchaseDate); ok {
		return rate, nil
	}

	msg := domain.Warnf("no %s rate available on or before %s; using last available value",
		company.Currency, purchaseDate)
	if rate, ok := series.LastValid(); ok {
		return rate, []domain.Message{msg}
	}
	return 1.0, []domain.Message{msg}
}
