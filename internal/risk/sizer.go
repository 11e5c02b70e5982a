package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/ports"
)

// Config holds the sizing policy parameters.
type Config struct {
	RiskBudget  decimal.Decimal // Intended loss if the trade stops out
	MaxNotional decimal.Decimal // Cap on size * entry price (dollar exposure)
}

// Sizer converts an entry/stop pair into a position size such that a full
// stop-out loses exactly the risk budget, subject to the notional cap.
type Sizer struct {
	cfg Config
}

// New creates a sizing policy from the given parameters.
func New(cfg Config) (*Sizer, error) {
	if !cfg.RiskBudget.IsPositive() {
		return nil, fmt.Errorf("sizer RiskBudget must be positive: %w", ports.ErrConfigurationError)
	}
	if !cfg.MaxNotional.IsPositive() {
		return nil, fmt.Errorf("sizer MaxNotional must be positive: %w", ports.ErrConfigurationError)
	}
	return &Sizer{cfg: cfg}, nil
}

// RiskBudget returns the configured per-trade risk budget.
func (s *Sizer) RiskBudget() decimal.Decimal {
	return s.cfg.RiskBudget
}

// Size computes the position size for a long entry. It returns the size,
// whether the notional cap reduced it, and an error wrapping ErrInvalidRisk
// when the stop is at or above the entry (risk per unit must be positive).
// The calculation is deterministic and side-effect free.
func (s *Sizer) Size(entryPrice, stopPrice decimal.Decimal) (size decimal.Decimal, capped bool, err error) {
	riskPerUnit := entryPrice.Sub(stopPrice)
	if !riskPerUnit.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("entry %s, stop %s: %w", entryPrice, stopPrice, ports.ErrInvalidRisk)
	}

	size = s.cfg.RiskBudget.Div(riskPerUnit)
	notional := size.Mul(entryPrice)
	if notional.GreaterThan(s.cfg.MaxNotional) {
		size = s.cfg.MaxNotional.Div(entryPrice)
		capped = true
	}
	return size, capped, nil
}
