package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southecare68/crypto-webhook/internal/ports"
)

func dec(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{RiskBudget: decimal.Zero, MaxNotional: dec(1500)})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = New(Config{RiskBudget: dec(200), MaxNotional: decimal.Zero})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = New(Config{RiskBudget: dec(200), MaxNotional: dec(1500)})
	assert.NoError(t, err)
}

func TestSize(t *testing.T) {
	tests := []struct {
		name        string
		riskBudget  int64
		maxNotional int64
		entry       int64
		stop        int64
		wantSize    string
		wantCapped  bool
		wantErr     error
	}{
		{
			name:        "capped by max notional",
			riskBudget:  200,
			maxNotional: 1500,
			entry:       100,
			stop:        90,
			// sizeByRisk = 200/10 = 20, notional 2000 > 1500 => 1500/100
			wantSize:   "15",
			wantCapped: true,
		},
		{
			name:        "uncapped",
			riskBudget:  200,
			maxNotional: 5000,
			entry:       100,
			stop:        90,
			wantSize:    "20",
			wantCapped:  false,
		},
		{
			name:        "stop equals entry",
			riskBudget:  200,
			maxNotional: 1500,
			entry:       100,
			stop:        100,
			wantErr:     ports.ErrInvalidRisk,
		},
		{
			name:        "stop above entry",
			riskBudget:  200,
			maxNotional: 1500,
			entry:       90,
			stop:        100,
			wantErr:     ports.ErrInvalidRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizer, err := New(Config{RiskBudget: dec(tt.riskBudget), MaxNotional: dec(tt.maxNotional)})
			require.NoError(t, err)

			size, capped, err := sizer.Size(dec(tt.entry), dec(tt.stop))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, size.Equal(decimal.RequireFromString(tt.wantSize)), "size %s, want %s", size, tt.wantSize)
			assert.Equal(t, tt.wantCapped, capped)
		})
	}
}

func TestSize_Deterministic(t *testing.T) {
	sizer, err := New(Config{RiskBudget: dec(200), MaxNotional: dec(1500)})
	require.NoError(t, err)

	first, capped1, err := sizer.Size(dec(100), dec(90))
	require.NoError(t, err)
	second, capped2, err := sizer.Size(dec(100), dec(90))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, capped1, capped2)
}
