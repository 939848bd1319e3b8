package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// csvHeader is the snapshot interchange layout: one ticker per row with
// its local-currency closing price at the purchase date.
var csvHeader = []string{"ticker", "initial_price"}

// ImportCSV reads a snapshot file into a ticker-to-price map.
func ImportCSV(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot file %s is empty", path)
	}

	prices := make(map[string]float64, len(records)-1)
	for i, record := range records {
		if i == 0 && record[0] == csvHeader[0] {
			continue // header row
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("snapshot file %s: row %d has %d columns", path, i+1, len(record))
		}
		price, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot file %s: invalid price for %s: %w", path, record[0], err)
		}
		prices[record[0]] = price
	}

	return prices, nil
}

// ExportCSV writes a snapshot map in the interchange layout, tickers
// sorted for a stable diff.
func ExportCSV(path string, prices map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	tickers := make([]string, 0, len(prices))
	for ticker := range prices {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		record := []string{ticker, strconv.FormatFloat(prices[ticker], 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
