// Command report prints the aggregate performance report and trade list
// from an existing ledger database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/southecare68/crypto-webhook/config"
	"github.com/southecare68/crypto-webhook/internal/adapters/logger"
	"github.com/southecare68/crypto-webhook/internal/adapters/sqlite"
	"github.com/southecare68/crypto-webhook/internal/analytics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(logger.LevelWarn) // Keep CLI output clean
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("Error opening ledger database: %v", err)
	}
	defer repo.Close()

	aggregator, err := analytics.New(analytics.Config{
		Repo:        repo,
		Logger:      appLogger,
		StartEquity: cfg.StartEquity,
		RiskBudget:  cfg.RiskBudget,
	})
	if err != nil {
		log.Fatalf("Error creating aggregator: %v", err)
	}

	ctx := context.Background()
	report, err := aggregator.BuildReport(ctx)
	if err != nil {
		log.Fatalf("Error building report: %v", err)
	}

	fmt.Printf("Equity: %s (start %s)\n", report.Equity.StringFixed(2), report.StartEquity.StringFixed(2))
	fmt.Printf("Total PnL: %s\n", report.TotalPnL.StringFixed(2))
	fmt.Printf("Closed trades: %d (%d winners)\n", report.ClosedTrades, report.WinningTrades)
	fmt.Printf("Win rate: %s  Avg R: %s\n\n", report.WinRate.StringFixed(4), report.AvgR.StringFixed(2))

	trades, err := aggregator.ListTrades(ctx)
	if err != nil {
		log.Fatalf("Error listing trades: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Trade\tSymbol\tTF\tEntry\tStop\tSize\tStatus\tOpened\t")
	for _, t := range trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Symbol, t.Timeframe,
			t.EntryPrice.String(), t.StopPrice.String(), t.Size.String(),
			t.Status, t.OpenedAt.UTC().Format("2006-01-02 15:04"))
	}
	w.Flush()
}
