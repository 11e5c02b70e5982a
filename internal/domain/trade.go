package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the header record for a single trade, one per trade identifier.
// Quantity actually held is derived from the fill ledger, not stored here;
// Size is the position size computed at entry and is immutable afterwards.
type Trade struct {
	ID          string          // Unique trade identifier (caller-supplied or derived)
	Symbol      string          // Trading symbol (e.g., "BTCUSDT"), descriptive only
	Timeframe   string          // Chart timeframe the signal came from (e.g., "4h")
	EntryPrice  decimal.Decimal // Price at which the trade was entered
	StopPrice   decimal.Decimal // Protective stop price; always below EntryPrice (long-only)
	RiskPerUnit decimal.Decimal // EntryPrice - StopPrice, cached at creation
	Size        decimal.Decimal // Position size computed by the sizing policy at entry
	Status      TradeStatus     // Current lifecycle status (OPEN, PARTIAL, CLOSED)
	OpenedAt    time.Time       // Timestamp when the trade was created
}

// IsClosed reports whether the trade has reached its terminal status.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}
