package domain

// Company is one entry of the simulated universe. Target weights are
// percentages of the total cash; their sum is used as-is and is not
// required to equal 100.
type Company struct {
	Name         string  `json:"name"`
	Ticker       string  `json:"ticker"`
	TargetWeight float64 `json:"target_weight"`
	Currency     string  `json:"currency"`
}

// CurrencyPairConfig describes how to convert one local currency into
// USD. An empty Symbol means the currency already is the unit of
// account and needs no conversion. Invert marks pairs quoted as
// local-per-USD, which must be reciprocated to get USD-per-local.
type CurrencyPairConfig struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol,omitempty"`
	Invert   bool   `json:"invert"`
}

// PurchaseEvent records one unit bought during the cash-distribution
// loop. Events form an append-only audit log and are never mutated.
type PurchaseEvent struct {
	Company       Company `json:"company"`
	UnitPriceUSD  float64 `json:"unit_price_usd"`
	CashBeforeUSD float64 `json:"cash_before_usd"`
	CashAfterUSD  float64 `json:"cash_after_usd"`
	GapBeforeUSD  float64 `json:"gap_before_usd"`
	GapAfterUSD   float64 `json:"gap_after_usd"`
	QuantityDelta int     `json:"quantity_delta"`
}

// AllocationRow is the per-company outcome of the allocation.
// Quantity is the only field the distribution loop mutates; everything
// else is fixed once the USD purchase price is resolved.
type AllocationRow struct {
	Company         Company `json:"company"`
	LocalPrice      float64 `json:"local_price"`
	FXRate          float64 `json:"fx_rate"`
	PriceUSD        float64 `json:"price_usd"`
	TargetUSD       float64 `json:"target_usd"`
	ExactQuantity   float64 `json:"exact_quantity"`
	InitialQuantity int     `json:"initial_quantity"`
	Quantity        int     `json:"quantity"`
	InitialResidual float64 `json:"initial_residual"`
	Residual        float64 `json:"residual"`
	InvestedUSD     float64 `json:"invested_usd"`
}

// AllocationResult is the immutable outcome of one allocation run.
// InitialCashUSD is the cash remaining after the integer allocation,
// before the distribution loop; FinalCashUSD is what the loop left
// unspent.
type AllocationResult struct {
	Rows            []AllocationRow    `json:"rows"`
	Events          []PurchaseEvent    `json:"events"`
	InitialCashUSD  float64            `json:"initial_cash_usd"`
	FinalCashUSD    float64            `json:"final_cash_usd"`
	InitialPriceUSD map[string]float64 `json:"initial_price_usd"`
	Messages        []Message          `json:"messages"`
}

// PortfolioSummary aggregates totals for the entire portfolio.
type PortfolioSummary struct {
	InvestedUSD     float64 `json:"invested_usd"`
	CurrentValueUSD float64 `json:"current_value_usd"`
}

// GainUSD returns the absolute gain or loss since purchase.
func (s PortfolioSummary) GainUSD() float64 {
	return s.CurrentValueUSD - s.InvestedUSD
}

// VariationPct returns the relative gain in percent. Zero invested
// capital yields zero rather than a division artifact.
func (s PortfolioSummary) VariationPct() float64 {
	if s.InvestedUSD == 0 {
		return 0
	}
	return s.GainUSD() / s.InvestedUSD * 100
}
