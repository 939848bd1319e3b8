package history

import (
	"slices"

	"github.com/asimoes/retrosim/internal/timeseries"
)

// PriceTable is an instrument-by-date matrix of USD closing prices.
// Column order follows the order companies were supplied in, so
// renderers see a stable layout.
type PriceTable struct {
	tickers []string
	columns map[string]timeseries.Series
}

// NewPriceTable builds an empty table.
func NewPriceTable() PriceTable {
	return PriceTable{columns: make(map[string]timeseries.Series)}
}

// Set adds or replaces an instrument column.
func (t *PriceTable) Set(ticker string, s timeseries.Series) {
	if _, ok := t.columns[ticker]; !ok {
		t.tickers = append(t.tickers, ticker)
	}
	t.columns[ticker] = s
}

// Tickers returns the column order.
func (t PriceTable) Tickers() []string { return slices.Clone(t.tickers) }

// Column returns one instrument's series.
func (t PriceTable) Column(ticker string) (timeseries.Series, bool) {
	s, ok := t.columns[ticker]
	return s, ok
}

// Reindex projects every column onto a common day index.
func (t PriceTable) Reindex(index []timeseries.Date) PriceTable {
	out := NewPriceTable()
	for _, ticker := range t.tickers {
		out.Set(ticker, t.columns[ticker].Reindex(index))
	}
	return out
}

// ForwardFill forward-fills every column.
func (t PriceTable) ForwardFill() PriceTable {
	out := NewPriceTable()
	for _, ticker := range t.tickers {
		out.Set(ticker, t.columns[ticker].ForwardFill())
	}
	return out
}

// FillMissingWith replaces any still-missing point of a column with
// that instrument's known initial USD purchase price. After this step
// the valuation never encounters a missing price for an instrument
// with a resolved allocation.
func (t PriceTable) FillMissingWith(initialPriceUSD map[string]float64) PriceTable {
	out := NewPriceTable()
	for _, ticker := range t.tickers {
		column := t.columns[ticker]
		if price, ok := initialPriceUSD[ticker]; ok {
			column = column.FillMissing(price)
		}
		out.Set(ticker, column)
	}
	return out
}

// Latest returns the most recent non-missing price per instrument.
func (t PriceTable) Latest() map[string]float64 {
	out := make(map[string]float64, len(t.tickers))
	for _, ticker := range t.tickers {
		if v, ok := t.columns[ticker].LastValid(); ok {
			out[ticker] = v
		}
	}
	return out
}
