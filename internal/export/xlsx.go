// Package export renders a simulation result as an XLSX workbook.
package export

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/simulation"
)

// Writer builds XLSX reports from simulation results.
type Writer struct {
	log zerolog.Logger
}

// NewWriter creates a new XLSX writer
func NewWriter(log zerolog.Logger) *Writer {
	return &Writer{log: log.With().Str("component", "export").Logger()}
}

// WriteFile renders the result into an XLSX workbook at path with one
// sheet per report: allocation table, purchase log, daily valuation
// and portfolio summary.
func (w *Writer) WriteFile(path string, result *simulation.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Allocation")
	if err := w.writeAllocation(f, result); err != nil {
		return err
	}
	if err := w.writePurchaseLog(f, result); err != nil {
		return err
	}
	if err := w.writeValuation(f, result); err != nil {
		return err
	}
	if err := w.writeSummary(f, result); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.log.Info().Str("path", path).Str("run_id", result.RunID).Msg("Workbook written")
	return nil
}

func (w *Writer) writeAllocation(f *excelize.File, result *simulation.Result) error {
	sheet := "Allocation"
	header := []interface{}{
		"Company", "Ticker", "Currency", "Weight %", "Local Price", "FX Rate",
		"Price USD", "Target USD", "Exact Qty", "Quantity", "Residual", "Invested USD",
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range result.Allocation.Rows {
		values := []interface{}{
			row.Company.Name,
			row.Company.Ticker,
			row.Company.Currency,
			row.Company.TargetWeight,
			domain.Round6(row.LocalPrice),
			domain.Round6(row.FXRate),
			domain.Round2(row.PriceUSD),
			domain.Round2(row.TargetUSD),
			domain.Round6(row.ExactQuantity),
			row.Quantity,
			domain.Round6(row.Residual),
			domain.Round2(row.InvestedUSD),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writePurchaseLog(f *excelize.File, result *simulation.Result) error {
	sheet := "PurchaseLog"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{
		"Ticker", "Unit Price USD", "Cash Before", "Cash After", "Gap Before", "Gap After",
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, event := range result.Allocation.Events {
		values := []interface{}{
			event.Company.Ticker,
			domain.Round2(event.UnitPriceUSD),
			domain.Round2(event.CashBeforeUSD),
			domain.Round2(event.CashAfterUSD),
			domain.Round2(event.GapBeforeUSD),
			domain.Round2(event.GapAfterUSD),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeValuation(f *excelize.File, result *simulation.Result) error {
	sheet := "Valuation"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := writeRow(f, sheet, 1, []interface{}{"Date", "Value USD", "Smoothed USD"}); err != nil {
		return err
	}

	for i, date := range result.ValueDates {
		values := []interface{}{
			date.String(),
			domain.Round2(result.ValueSeries[i]),
			domain.Round2(result.Stats.SmoothedValues[i]),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeSummary(f *excelize.File, result *simulation.Result) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Run ID", result.RunID},
		{"Purchase Date", result.Input.PurchaseDate.String()},
		{"Total Cash USD", domain.Round2(result.Input.TotalCashUSD)},
		{"Invested USD", domain.Round2(result.Summary.InvestedUSD)},
		{"Current Value USD", domain.Round2(result.Summary.CurrentValueUSD)},
		{"Gain USD", domain.Round2(result.Summary.GainUSD())},
		{"Variation %", domain.Round2(result.Summary.VariationPct())},
		{"Final Cash USD", domain.Round2(result.Allocation.FinalCashUSD)},
	}

	row := 1
	for _, values := range rows {
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeRow(f, sheet, row, []interface{}{"Messages"}); err != nil {
		return err
	}
	for _, msg := range result.Messages {
		row++
		if err := writeRow(f, sheet, row, []interface{}{string(msg.Level), msg.Text}); err != nil {
			return err
		}
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
