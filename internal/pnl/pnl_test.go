package pnl

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/southecare68/crypto-webhook/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fill(side domain.OrderSide, qty, price, fee string) *domain.Fill {
	return &domain.Fill{
		TradeID:  "t1",
		Side:     side,
		Quantity: dec(qty),
		Price:    dec(price),
		Fee:      dec(fee),
	}
}

func TestCompute_EmptyFills(t *testing.T) {
	realized, netQty := Compute(nil)
	assert.True(t, realized.IsZero(), "realized PnL should be zero for empty fills")
	assert.True(t, netQty.IsZero(), "net quantity should be zero for empty fills")

	realized, netQty = Compute([]*domain.Fill{})
	assert.True(t, realized.IsZero())
	assert.True(t, netQty.IsZero())
}

func TestCompute_BuyOnly(t *testing.T) {
	fills := []*domain.Fill{fill(domain.Buy, "20", "100", "0")}
	realized, netQty := Compute(fills)
	assert.True(t, realized.Equal(dec("-2000")), "got %s", realized)
	assert.True(t, netQty.Equal(dec("20")))
}

func TestCompute_RoundTripWithProfit(t *testing.T) {
	fills := []*domain.Fill{
		fill(domain.Buy, "20", "100", "0"),
		fill(domain.Sell, "20", "110", "0"),
	}
	realized, netQty := Compute(fills)
	assert.True(t, realized.Equal(dec("200")), "got %s", realized)
	assert.True(t, netQty.IsZero())
}

func TestCompute_StagedExitWithFees(t *testing.T) {
	fills := []*domain.Fill{
		fill(domain.Buy, "20", "100", "1.5"),
		fill(domain.Sell, "10", "110", "0.75"),
		fill(domain.Sell, "10", "120", "0.75"),
	}
	realized, netQty := Compute(fills)
	// 10*110 + 10*120 - 20*100 - 3 = 297
	assert.True(t, realized.Equal(dec("297")), "got %s", realized)
	assert.True(t, netQty.IsZero())
}

func TestCompute_OrderIndependent(t *testing.T) {
	fills := []*domain.Fill{
		fill(domain.Buy, "20", "100", "1"),
		fill(domain.Sell, "10", "110", "2"),
		fill(domain.Sell, "5", "120", "0"),
		fill(domain.Buy, "3", "95", "0.5"),
	}

	wantPnL, wantQty := Compute(fills)

	// Every rotation of the fill list must yield the same result.
	for shift := 1; shift < len(fills); shift++ {
		rotated := append(append([]*domain.Fill{}, fills[shift:]...), fills[:shift]...)
		gotPnL, gotQty := Compute(rotated)
		assert.True(t, gotPnL.Equal(wantPnL), "shift %d: pnl %s != %s", shift, gotPnL, wantPnL)
		assert.True(t, gotQty.Equal(wantQty), "shift %d: qty %s != %s", shift, gotQty, wantQty)
	}
}

func TestCompute_NetQuantityAfterPartial(t *testing.T) {
	fills := []*domain.Fill{
		fill(domain.Buy, "20", "100", "0"),
		fill(domain.Sell, "10", "105", "0"),
	}
	_, netQty := Compute(fills)
	assert.True(t, netQty.Equal(dec("10")))
}
