package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/config"
	"github.com/asimoes/retrosim/internal/database"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/export"
	"github.com/asimoes/retrosim/internal/modules/allocation"
	"github.com/asimoes/retrosim/internal/modules/fxrates"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/modules/simulation"
	"github.com/asimoes/retrosim/internal/modules/snapshot"
	"github.com/asimoes/retrosim/internal/modules/valuation"
	"github.com/asimoes/retrosim/internal/timeseries"
	"github.com/asimoes/retrosim/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "retrosim",
		Usage: "retroactive thematic portfolio simulator",
		Commands: []*cli.Command{
			simulateCommand(),
			snapshotCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "run a simulation and print the results",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "cash", Usage: "total cash in USD (defaults to DEFAULT_CASH_USD)"},
			&cli.StringFlag{Name: "date", Usage: "purchase date, YYYY-MM-DD (defaults to DEFAULT_PURCHASE_DATE)"},
			&cli.StringFlag{Name: "xlsx", Usage: "write an XLSX report to this path"},
		},
		Action: runSimulate,
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "capture or import the initial-price snapshot for a date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "purchase date, YYYY-MM-DD", Required: true},
			&cli.StringFlag{Name: "csv", Usage: "import prices from this CSV instead of fetching"},
		},
		Action: runSnapshot,
	}
}

type env struct {
	cfg *config.Config
	db  *database.DB
	log zerolog.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: "warn", Pretty: true})

	db, err := database.New(cfg.SnapshotDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return &env{cfg: cfg, db: db, log: log}, nil
}

func runSimulate(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	input := simulation.Input{
		TotalCashUSD: e.cfg.DefaultCashUSD,
		PurchaseDate: e.cfg.DefaultBuyDate,
	}
	if c.IsSet("cash") {
		input.TotalCashUSD = c.Float64("cash")
	}
	if c.IsSet("date") {
		date, err := timeseries.ParseDate(c.String("date"))
		if err != nil {
			return err
		}
		input.PurchaseDate = date
	}

	market := yahoo.NewClient(e.log)
	sim := simulation.NewService(
		config.DefaultCompanies(),
		snapshot.NewRepository(e.db, e.log),
		fxrates.NewService(config.DefaultCurrencyPairs(), market, e.log),
		allocation.NewAllocator(e.log),
		history.NewService(market, history.NewFetchCache(e.cfg.HistoryCacheDir, e.log), e.log),
		valuation.NewService(e.log),
		e.log,
	)

	result, err := sim.Run(input)
	if err != nil {
		return err
	}

	printAllocation(result)
	printPurchaseLog(result)
	printSummary(result)
	printMessages(result.Messages)
	if domain.HasErrors(result.Messages) {
		fmt.Println("\nSome companies were excluded; see the messages above.")
	}

	if path := c.String("xlsx"); path != "" {
		if err := export.NewWriter(e.log).WriteFile(path, result); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", path)
	}

	return nil
}

func runSnapshot(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	date, err := timeseries.ParseDate(c.String("date"))
	if err != nil {
		return err
	}

	repo := snapshot.NewRepository(e.db, e.log)

	if path := c.String("csv"); path != "" {
		prices, err := snapshot.ImportCSV(path)
		if err != nil {
			return err
		}
		if err := repo.Save(date, prices); err != nil {
			return err
		}
		fmt.Printf("Imported %d prices for %s\n", len(prices), date)
		return nil
	}

	capture := snapshot.NewCaptureService(repo, yahoo.NewClient(e.log), e.log)
	prices, messages, err := capture.Capture(date, config.DefaultCompanies())
	if err != nil {
		return err
	}

	fmt.Printf("Captured %d prices for %s\n", len(prices), date)
	printMessages(messages)
	return nil
}

func printAllocation(result *simulation.Result) {
	fmt.Println("Allocation")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tWEIGHT\tPRICE USD\tQTY\tINVESTED\tRESIDUAL")
	for _, row := range result.Allocation.Rows {
		fmt.Fprintf(w, "%s\t%.1f%%\t%.2f\t%d\t%.2f\t%.6f\n",
			row.Company.Ticker,
			row.Company.TargetWeight,
			domain.Round2(row.PriceUSD),
			row.Quantity,
			domain.Round2(row.InvestedUSD),
			domain.Round6(row.Residual),
		)
	}
	w.Flush()
	fmt.Printf("Cash left: %.2f USD\n\n", domain.Round2(result.Allocation.FinalCashUSD))
}

func printPurchaseLog(result *simulation.Result) {
	if len(result.Allocation.Events) == 0 {
		return
	}
	fmt.Println("Purchase log")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tUNIT PRICE\tCASH AFTER\tGAP AFTER")
	for _, event := range result.Allocation.Events {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n",
			event.Company.Ticker,
			domain.Round2(event.UnitPriceUSD),
			domain.Round2(event.CashAfterUSD),
			domain.Round2(event.GapAfterUSD),
		)
	}
	w.Flush()
	fmt.Println()
}

func printSummary(result *simulation.Result) {
	fmt.Println("Summary")
	fmt.Printf("  Invested:      %.2f USD\n", domain.Round2(result.Summary.InvestedUSD))
	fmt.Printf("  Current value: %.2f USD\n", domain.Round2(result.Summary.CurrentValueUSD))
	fmt.Printf("  Gain:          %.2f USD (%.2f%%)\n",
		domain.Round2(result.Summary.GainUSD()), domain.Round2(result.Summary.VariationPct()))
	if result.Stats.MaxDrawdown != nil {
		fmt.Printf("  Max drawdown:  %.2f%%\n", domain.Round2(*result.Stats.MaxDrawdown*100))
	}
	if result.Stats.SharpeRatio != nil {
		fmt.Printf("  Sharpe:        %.2f\n", domain.Round2(*result.Stats.SharpeRatio))
	}
}

func printMessages(messages []domain.Message) {
	if len(messages) == 0 {
		return
	}
	fmt.Println("\nMessages")
	for _, msg := range messages {
		fmt.Printf("  [%s] %s\n", msg.Level, msg.Text)
	}
}
