package paper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantTrendBot/internal/domain"
	"instantTrendBot/internal/ports"
)

var t0 = time.Date(2024, 3, 4, 14, 31, 0, 0, time.UTC)

func bar(i int, open, high, low, close float64) *domain.Kline {
	return &domain.Kline{
		Symbol:    "SPY",
		OpenTime:  t0.Add(time.Duration(i) * time.Minute),
		CloseTime: t0.Add(time.Duration(i+1) * time.Minute),
		Open:      open, High: high, Low: low, Close: close,
	}
}

func newTestBroker(t *testing.T, cancelAfter int) *Broker {
	t.Helper()
	b, err := NewBroker(Config{CancelAfterBars: cancelAfter, Logger: ports.NopLogger{}})
	require.NoError(t, err)
	return b
}

func TestNewBroker_Validation(t *testing.T) {
	_, err := NewBroker(Config{CancelAfterBars: 1})
	assert.Error(t, err)

	_, err = NewBroker(Config{CancelAfterBars: 0, Logger: ports.NopLogger{}})
	assert.True(t, errors.Is(err, ports.ErrConfigurationError))
}

func TestBroker_MarketOrderFillsAtLastClose(t *testing.T) {
	b := newTestBroker(t, 1)
	ctx := context.Background()

	_, err := b.Submit(ctx, domain.MarketOrder("SPY", domain.Buy, 10, ""))
	assert.True(t, errors.Is(err, ports.ErrOrderRejected), "no price seen yet")

	events, err := b.ProcessBar(ctx, bar(0, 100, 101, 99, 100.5))
	require.NoError(t, err)
	assert.Empty(t, events)

	id, err := b.Submit(ctx, domain.MarketOrder("SPY", domain.Buy, 10, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	h, err := b.PositionOf(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, 10.0, h.Quantity)
	assert.Equal(t, 100.5, h.EntryPrice)

	events, err = b.ProcessBar(ctx, bar(1, 100.5, 102, 100, 101))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.OrderFilled, events[0].Kind)
	assert.Equal(t, id, events[0].OrderID)
	assert.Equal(t, 100.5, events[0].Price)

	events, err = b.ProcessBar(ctx, bar(2, 101, 102, 100, 101))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBroker_LimitOrders(t *testing.T) {
	tests := []struct {
		name      string
		intent    domain.OrderIntent
		next      *domain.Kline
		wantKind  domain.OrderEventKind
		wantPrice float64
		wantQty   float64
	}{
		{
			name:      "buy fills at limit",
			intent:    domain.LimitOrder("SPY", domain.Buy, 5, 99.5, ""),
			next:      bar(1, 100, 100.5, 99.2, 99.8),
			wantKind:  domain.OrderFilled,
			wantPrice: 99.5,
			wantQty:   5,
		},
		{
			name:      "buy gaps below limit fills at open",
			intent:    domain.LimitOrder("SPY", domain.Buy, 5, 99.5, ""),
			next:      bar(1, 99, 99.4, 98.8, 99.1),
			wantKind:  domain.OrderFilled,
			wantPrice: 99,
			wantQty:   5,
		},
		{
			name:      "sell fills at limit",
			intent:    domain.LimitOrder("SPY", domain.Sell, 5, 101, ""),
			next:      bar(1, 100.5, 101.2, 100.2, 101),
			wantKind:  domain.OrderFilled,
			wantPrice: 101,
			wantQty:   -5,
		},
		{
			name:     "untouched limit is cancelled",
			intent:   domain.LimitOrder("SPY", domain.Buy, 5, 98, ""),
			next:     bar(1, 100, 100.5, 99.2, 99.8),
			wantKind: domain.OrderCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBroker(t, 1)
			ctx := context.Background()
			_, err := b.ProcessBar(ctx, bar(0, 100, 101, 99, 100))
			require.NoError(t, err)

			id, err := b.Submit(ctx, tt.intent)
			require.NoError(t, err)
			assert.Equal(t, 1, b.Pending())

			events, err := b.ProcessBar(ctx, tt.next)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, id, events[0].OrderID)
			assert.Equal(t, tt.wantKind, events[0].Kind)
			assert.Equal(t, tt.wantPrice, events[0].Price)
			assert.Equal(t, 0, b.Pending())

			h, err := b.PositionOf(ctx, "SPY")
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, h.Quantity)
		})
	}
}

func TestBroker_LimitRestsUntilCancelAfter(t *testing.T) {
	b := newTestBroker(t, 3)
	ctx := context.Background()
	_, err := b.ProcessBar(ctx, bar(0, 100, 101, 99, 100))
	require.NoError(t, err)
	_, err = b.Submit(ctx, domain.LimitOrder("SPY", domain.Buy, 1, 90, ""))
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		events, err := b.ProcessBar(ctx, bar(i, 100, 101, 99, 100))
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, 1, b.Pending())
	}
	events, err := b.ProcessBar(ctx, bar(3, 100, 101, 99, 100))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.OrderCancelled, events[0].Kind)
}

func TestBroker_ReversalAndAveraging(t *testing.T) {
	b := newTestBroker(t, 1)
	ctx := context.Background()

	steps := []struct {
		close   float64
		side    domain.OrderSide
		qty     float64
		wantQty float64
		wantAvg float64
	}{
		{close: 100, side: domain.Buy, qty: 10, wantQty: 10, wantAvg: 100},
		{close: 110, side: domain.Buy, qty: 10, wantQty: 20, wantAvg: 105},
		{close: 120, side: domain.Sell, qty: 5, wantQty: 15, wantAvg: 105},
		{close: 90, side: domain.Sell, qty: 30, wantQty: -15, wantAvg: 90},
		{close: 95, side: domain.Buy, qty: 15, wantQty: 0, wantAvg: 0},
	}

	for i, s := range steps {
		_, err := b.ProcessBar(ctx, bar(i, s.close, s.close, s.close, s.close))
		require.NoError(t, err)
		_, err = b.Submit(ctx, domain.MarketOrder("SPY", s.side, s.qty, ""))
		require.NoError(t, err)

		h, err := b.PositionOf(ctx, "SPY")
		require.NoError(t, err)
		assert.InDelta(t, s.wantQty, h.Quantity, 1e-9, "step %d", i)
		assert.InDelta(t, s.wantAvg, h.EntryPrice, 1e-9, "step %d", i)
	}
}

func TestBroker_RejectsInvalidIntent(t *testing.T) {
	b := newTestBroker(t, 1)
	_, err := b.Submit(context.Background(), domain.MarketOrder("SPY", domain.Buy, 0, ""))
	assert.True(t, errors.Is(err, ports.ErrOrderRejected))

	_, err = b.ProcessBar(context.Background(), nil)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}
