package domain

import "github.com/shopspring/decimal"

// Report is an aggregate performance snapshot over all closed trades.
// It is recomputed fresh on every request; nothing here is cached.
type Report struct {
	StartEquity   decimal.Decimal // Configured equity baseline
	Equity        decimal.Decimal // StartEquity + TotalPnL
	TotalPnL      decimal.Decimal // Sum of realized PnL over closed trades
	ClosedTrades  int             // Number of trades with status CLOSED
	WinningTrades int             // Closed trades with positive PnL
	WinRate       decimal.Decimal // WinningTrades / ClosedTrades, zero when no closed trades
	AvgR          decimal.Decimal // Mean R-multiple over closed trades, zero when none
}
