// Package pnl derives position and profit state from a trade's fill history.
//
// The model is average-cost, not lot-matching: buy and sell values are summed
// independently, so the result is independent of fill order. This is a
// deliberate simplification that fits single-entry trades with staged exits
// and no re-entries mid-trade; it would misattribute profit across lots if
// the same trade mixed multiple entries at different prices with FIFO intent.
package pnl

import (
	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/domain"
)

// Compute replays a trade's fills and returns the realized profit/loss and
// the net open position quantity.
//
//	realizedPnL = sum(SELL qty*price) - sum(BUY qty*price) - sum(fees)
//	netQty      = sum(BUY qty) - sum(SELL qty)
//
// An empty fill list yields (0, 0). The function is pure: no I/O, no clock.
func Compute(fills []*domain.Fill) (realizedPnL, netQty decimal.Decimal) {
	var buyValue, sellValue, fees decimal.Decimal
	for _, f := range fills {
		value := f.Quantity.Mul(f.Price)
		switch f.Side {
		case domain.Buy:
			buyValue = buyValue.Add(value)
			netQty = netQty.Add(f.Quantity)
		case domain.Sell:
			sellValue = sellValue.Add(value)
			netQty = netQty.Sub(f.Quantity)
		}
		fees = fees.Add(f.Fee)
	}
	realizedPnL = sellValue.Sub(buyValue).Sub(fees)
	return realizedPnL, netQty
}
