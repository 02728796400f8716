package domain

import (
	"fmt"
	"math"
	"time"
)

// OrderIntent is a request to trade produced by a strategy. It is a value:
// once built it is never modified.
type OrderIntent struct {
	Symbol     string
	Side       OrderSide
	Quantity   float64   // Always positive, direction is carried by Side
	Type       OrderType // Market or limit
	LimitPrice float64   // Only set for limit orders
	Tag        string    // Free-form label forwarded to the broker
}

// MarketOrder builds a market intent.
func MarketOrder(symbol string, side OrderSide, quantity float64, tag string) OrderIntent {
	return OrderIntent{Symbol: symbol, Side: side, Quantity: quantity, Type: OrderTypeMarket, Tag: tag}
}

// LimitOrder builds a limit intent at price.
func LimitOrder(symbol string, side OrderSide, quantity, price float64, tag string) OrderIntent {
	return OrderIntent{Symbol: symbol, Side: side, Quantity: quantity, Type: OrderTypeLimit, LimitPrice: price, Tag: tag}
}

// IsLimit reports whether the intent rests at a limit price.
func (o OrderIntent) IsLimit() bool {
	return o.Type == OrderTypeLimit
}

// Validate checks the intent is well formed before it is handed to a broker.
func (o OrderIntent) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order intent has no symbol")
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("order intent has invalid side %q", o.Side)
	}
	if o.Quantity <= 0 || math.IsNaN(o.Quantity) || math.IsInf(o.Quantity, 0) {
		return fmt.Errorf("order intent quantity must be positive, got %v", o.Quantity)
	}
	if o.IsLimit() && o.LimitPrice <= 0 {
		return fmt.Errorf("limit order intent needs a positive price, got %v", o.LimitPrice)
	}
	return nil
}

func (o OrderIntent) String() string {
	if o.IsLimit() {
		return fmt.Sprintf("%s %v %s limit @ %.2f", o.Side, o.Quantity, o.Symbol, o.LimitPrice)
	}
	return fmt.Sprintf("%s %v %s market", o.Side, o.Quantity, o.Symbol)
}

// OrderEventKind tells a fill apart from a cancellation.
type OrderEventKind string

const (
	OrderFilled    OrderEventKind = "FILLED"
	OrderCancelled OrderEventKind = "CANCELLED"
)

// OrderEvent is reported by the broker collaborator after an intent was accepted.
type OrderEvent struct {
	ID       int64 // Journal row ID (0 until persisted)
	OrderID  int64
	Symbol   string
	Kind     OrderEventKind
	Side     OrderSide
	Type     OrderType
	Quantity float64
	Price    float64 // Fill price, zero for cancellations
	Time     time.Time
}
