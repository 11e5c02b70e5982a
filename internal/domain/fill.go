package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is a single executed buy or sell quantity at a price. Fills are
// append-only: they are never mutated or deleted, and all state changes
// on a trade are expressed as additional fills.
type Fill struct {
	ID        int64           // Unique identifier for the fill (from DB)
	TradeID   string          // Trade this fill belongs to
	Side      OrderSide       // BUY or SELL
	Quantity  decimal.Decimal // Executed quantity, always positive
	Price     decimal.Decimal // Execution price, always positive
	Fee       decimal.Decimal // Fee paid, non-negative, zero for synthetic fills
	Timestamp time.Time       // Set at insertion time
}
