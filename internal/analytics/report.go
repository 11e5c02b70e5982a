// Package analytics computes aggregate performance statistics over the
// trade ledger.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/domain"
	"github.com/southecare68/crypto-webhook/internal/pnl"
	"github.com/southecare68/crypto-webhook/internal/ports"
)

// Aggregator builds performance reports by replaying the fill ledger of
// every closed trade. Nothing is cached: each BuildReport call recomputes
// the snapshot from storage, which is fine for ledgers in the hundreds to
// low thousands of trades.
type Aggregator struct {
	repo        ports.LedgerRepository
	logger      ports.Logger
	startEquity decimal.Decimal
	riskBudget  decimal.Decimal
}

// Config holds the aggregator parameters.
type Config struct {
	Repo        ports.LedgerRepository
	Logger      ports.Logger
	StartEquity decimal.Decimal
	RiskBudget  decimal.Decimal
}

// New creates an Aggregator.
func New(cfg Config) (*Aggregator, error) {
	if cfg.Repo == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Aggregator")
	}
	if !cfg.RiskBudget.IsPositive() {
		return nil, fmt.Errorf("aggregator RiskBudget must be positive: %w", ports.ErrConfigurationError)
	}
	return &Aggregator{
		repo:        cfg.Repo,
		logger:      cfg.Logger,
		startEquity: cfg.StartEquity,
		riskBudget:  cfg.RiskBudget,
	}, nil
}

// BuildReport scans all trades, realizes PnL for the closed ones, and
// returns the aggregate snapshot. With no closed trades the ratios are zero
// and equity equals the configured baseline.
func (a *Aggregator) BuildReport(ctx context.Context) (*domain.Report, error) {
	trades, err := a.repo.FindAllTrades(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		StartEquity: a.startEquity,
		Equity:      a.startEquity,
	}

	var sumR decimal.Decimal
	for _, trade := range trades {
		if trade.Status != domain.StatusClosed {
			continue
		}
		fills, err := a.repo.FindFills(ctx, trade.ID)
		if err != nil {
			return nil, err
		}
		realized, _ := pnl.Compute(fills)

		report.ClosedTrades++
		report.TotalPnL = report.TotalPnL.Add(realized)
		sumR = sumR.Add(realized.Div(a.riskBudget))
		if realized.IsPositive() {
			report.WinningTrades++
		}
	}

	if report.ClosedTrades > 0 {
		closed := decimal.NewFromInt(int64(report.ClosedTrades))
		report.WinRate = decimal.NewFromInt(int64(report.WinningTrades)).Div(closed)
		report.AvgR = sumR.Div(closed)
	}
	report.Equity = a.startEquity.Add(report.TotalPnL)

	a.logger.Debug(ctx, "Report built", map[string]interface{}{
		"closed":  report.ClosedTrades,
		"winners": report.WinningTrades,
		"pnl":     report.TotalPnL.String(),
	})
	return report, nil
}

// ListTrades returns all trade headers for display, most recent first.
func (a *Aggregator) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return a.repo.FindAllTrades(ctx)
}
