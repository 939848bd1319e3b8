// Package simulation orchestrates a full retroactive run: snapshot,
// currency normalization, allocation, price history and valuation.
package simulation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/allocation"
	"github.com/asimoes/retrosim/internal/modules/fxrates"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/modules/valuation"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// Input are the two user-controlled knobs of a run.
type Input struct {
	TotalCashUSD float64         `json:"total_cash_usd"`
	PurchaseDate timeseries.Date `json:"purchase_date"`
}

// Result is the complete outcome of one simulation run. Two runs with
// identical inputs and identical market data differ only in RunID.
type Result struct {
	RunID       string                  `json:"run_id"`
	Input       Input                   `json:"input"`
	Allocation  domain.AllocationResult `json:"allocation"`
	Positions   []valuation.Position    `json:"positions"`
	Summary     domain.PortfolioSummary `json:"summary"`
	ValueDates  []timeseries.Date       `json:"value_dates"`
	ValueSeries []float64               `json:"value_series"`
	Stats       valuation.Stats         `json:"stats"`
	Messages    []domain.Message        `json:"messages"`
}

// SnapshotStore loads the initial local-currency prices for a date.
type SnapshotStore interface {
	Load(purchaseDate timeseries.Date, companies []domain.Company) (map[string]float64, []domain.Message)
}

// Service wires the pipeline stages together.
type Service struct {
	companies []domain.Company
	snapshots SnapshotStore
	fx        *fxrates.Service
	allocator *allocation.Allocator
	history   *history.Service
	valuation *valuation.Service
	log       zerolog.Logger
}

// NewService creates a new simulation service
func NewService(
	companies []domain.Company,
	snapshots SnapshotStore,
	fx *fxrates.Service,
	allocator *allocation.Allocator,
	hist *history.Service,
	val *valuation.Service,
	log zerolog.Logger,
) *Service {
	return &Service{
		companies: companies,
		snapshots: snapshots,
		fx:        fx,
		allocator: allocator,
		history:   hist,
		valuation: val,
		log:       log.With().Str("service", "simulation").Logger(),
	}
}

// Run executes the whole pipeline. The only hard failure is an empty
// business-day index (purchase date after today); every data problem
// degrades into Messages on the result.
func (s *Service) Run(input Input) (*Result, error) {
	end := timeseries.Today()
	index := timeseries.BusinessDays(input.PurchaseDate, end)
	if len(index) == 0 {
		return nil, fmt.Errorf("no business days between %s and %s", input.PurchaseDate, end)
	}

	var messages []domain.Message

	currencies := make([]string, 0, len(s.companies))
	for _, company := range s.companies {
		currencies = append(currencies, company.Currency)
	}

	initialPrices, snapMessages := s.snapshots.Load(input.PurchaseDate, s.companies)
	messages = append(messages, snapMessages...)

	fxResult := s.fx.LoadSeries(currencies, input.PurchaseDate, end, index)
	messages = append(messages, fxResult.Messages...)

	alloc := s.allocator.Allocate(allocation.Params{
		Companies:          s.companies,
		TotalCashUSD:       input.TotalCashUSD,
		PurchaseDate:       input.PurchaseDate,
		InitialPricesLocal: initialPrices,
		FXSeriesByCurrency: fxResult.SeriesByCurrency,
	})
	messages = append(messages, alloc.Messages...)

	table, histMessages := s.history.LoadUSDHistory(s.companies, input.PurchaseDate, end, fxResult.SeriesByCurrency)
	messages = append(messages, histMessages...)

	table = table.Reindex(index).ForwardFill().FillMissingWith(alloc.InitialPriceUSD)

	values := s.valuation.ValueSeries(alloc.Rows, table, index)
	summary, positions := s.valuation.Summary(alloc.Rows, table.Latest())
	stats := s.valuation.Stats(values)

	result := &Result{
		RunID:       uuid.NewString(),
		Input:       input,
		Allocation:  alloc,
		Positions:   positions,
		Summary:     summary,
		ValueDates:  values.Dates(),
		ValueSeries: values.Values(),
		Stats:       stats,
		Messages:    messages,
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Str("purchase_date", input.PurchaseDate.String()).
		Float64("cash_usd", input.TotalCashUSD).
		Int("positions", len(positions)).
		Int("messages", len(messages)).
		Msg("Simulation completed")
	return result, nil
}
