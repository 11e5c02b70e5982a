package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is an inbound trade-lifecycle signal, decoded from a webhook payload.
// Which fields are meaningful depends on Type: entries carry Symbol/Entry/Stop,
// exits carry TradeID/ExitPrice, and anything else is forwarded as-is via Raw.
type Event struct {
	Type      EventType
	Symbol    string
	Timeframe string
	TradeID   string          // Optional on entries; required on exits
	Entry     decimal.Decimal // Entry price (entries only)
	Stop      decimal.Decimal // Stop price (entries only)
	ExitPrice decimal.Decimal // Exit price (exits only)
	Raw       string          // Original payload, used for passthrough alerts
	At        time.Time       // Receipt time, used to derive a trade ID when absent
}
