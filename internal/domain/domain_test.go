package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHolding_Status(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		want     PositionStatus
	}{
		{name: "long", quantity: 10, want: StatusLong},
		{name: "short", quantity: -3, want: StatusShort},
		{name: "flat", quantity: 0, want: StatusFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Holding{Symbol: "SPY", Quantity: tt.quantity}
			assert.Equal(t, tt.want, h.Status())
			assert.Equal(t, tt.quantity != 0, h.IsOpen())
		})
	}
	assert.Equal(t, 3.0, Holding{Quantity: -3}.AbsQuantity())
}

func TestOrderIntent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		intent  OrderIntent
		wantErr bool
	}{
		{name: "market", intent: MarketOrder("SPY", Buy, 10, ""), wantErr: false},
		{name: "limit", intent: LimitOrder("SPY", Sell, 10, 101.25, ""), wantErr: false},
		{name: "missing symbol", intent: MarketOrder("", Buy, 10, ""), wantErr: true},
		{name: "zero quantity", intent: MarketOrder("SPY", Buy, 0, ""), wantErr: true},
		{name: "bad side", intent: OrderIntent{Symbol: "SPY", Side: "HOLD", Quantity: 1, Type: OrderTypeMarket}, wantErr: true},
		{name: "limit without price", intent: LimitOrder("SPY", Buy, 1, 0, ""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKline_Timestamp(t *testing.T) {
	open := time.Date(2024, 3, 1, 15, 55, 0, 0, time.UTC)
	k := &Kline{OpenTime: open}
	assert.Equal(t, open, k.Timestamp())

	k.CloseTime = open.Add(time.Minute)
	assert.Equal(t, open.Add(time.Minute), k.Timestamp())
}

func TestClassifyRegime(t *testing.T) {
	assert.Equal(t, RegimeNeutral, ClassifyRegime(80, false))
	assert.Equal(t, RegimeMomentum, ClassifyRegime(60, true))
	assert.Equal(t, RegimeReversion, ClassifyRegime(37.5, true))
	assert.Equal(t, RegimeNeutral, ClassifyRegime(50, true))
}

func TestNewDecision_CopiesFault(t *testing.T) {
	res := StepResult{Symbol: "SPY", Kind: DecisionFault, Fault: errors.New("portfolio offline")}
	d := NewDecision(res, 62.5, true)
	assert.Equal(t, "portfolio offline", d.Fault)
	assert.Equal(t, RegimeMomentum, d.Regime)
	assert.Nil(t, d.Intent)
}
