package paper

import (
	"context"
	"fmt"
	"math"
	"sync"

	"instantTrendBot/internal/domain"
	"instantTrendBot/internal/ports"
)

const epsilon = 1e-9

// Config holds configuration for the paper broker.
type Config struct {
	CancelAfterBars int // Bars a limit order may rest unfilled before it is cancelled
	Logger          ports.Logger
}

type pendingOrder struct {
	id     int64
	intent domain.OrderIntent
	age    int
}

// Broker simulates order management against the replayed bars. Market orders
// fill at the latest close; limit orders fill when a later bar trades
// through their price, and are cancelled once they have rested
// CancelAfterBars bars. Fills and cancellations are reported on the next
// ProcessBar call.
type Broker struct {
	mu       sync.Mutex
	cfg      Config
	nextID   int64
	holdings map[string]domain.Holding
	lastBar  map[string]*domain.Kline
	pending  []pendingOrder
	events   []domain.OrderEvent
}

var _ ports.Broker = (*Broker)(nil)

// NewBroker creates a paper broker with no holdings.
func NewBroker(cfg Config) (*Broker, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for paper broker")
	}
	if cfg.CancelAfterBars < 1 {
		return nil, fmt.Errorf("%w: cancel-after bars must be at least 1, got %d", ports.ErrConfigurationError, cfg.CancelAfterBars)
	}
	return &Broker{
		cfg:      cfg,
		holdings: make(map[string]domain.Holding),
		lastBar:  make(map[string]*domain.Kline),
	}, nil
}

// PositionOf returns the current holding for symbol.
func (b *Broker) PositionOf(ctx context.Context, symbol string) (domain.Holding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.holdings[symbol]
	if !ok {
		return domain.Holding{Symbol: symbol}, nil
	}
	return h, nil
}

// Submit accepts an intent. Market orders fill immediately at the latest close.
func (b *Broker) Submit(ctx context.Context, intent domain.OrderIntent) (int64, error) {
	if err := intent.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrOrderRejected, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	last, ok := b.lastBar[intent.Symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no price seen for %s yet", ports.ErrOrderRejected, intent.Symbol)
	}

	b.nextID++
	id := b.nextID
	if intent.IsLimit() {
		b.pending = append(b.pending, pendingOrder{id: id, intent: intent})
		b.cfg.Logger.Debug(ctx, "Paper limit order resting", map[string]interface{}{"orderID": id, "intent": intent.String()})
		return id, nil
	}

	b.fill(ctx, id, intent, last.Close, last)
	return id, nil
}

// ProcessBar matches resting limits against bar, ages unfilled ones and
// returns every event produced since the previous call.
func (b *Broker) ProcessBar(ctx context.Context, bar *domain.Kline) ([]domain.OrderEvent, error) {
	if bar == nil {
		return nil, fmt.Errorf("%w: nil bar", ports.ErrInvalidRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.pending[:0]
	for _, p := range b.pending {
		if p.intent.Symbol != bar.Symbol {
			remaining = append(remaining, p)
			continue
		}
		if price, ok := limitFill(p.intent, bar); ok {
			b.fill(ctx, p.id, p.intent, price, bar)
			continue
		}
		p.age++
		if p.age >= b.cfg.CancelAfterBars {
			b.events = append(b.events, domain.OrderEvent{
				OrderID:  p.id,
				Symbol:   p.intent.Symbol,
				Kind:     domain.OrderCancelled,
				Side:     p.intent.Side,
				Type:     p.intent.Type,
				Quantity: p.intent.Quantity,
				Time:     bar.Timestamp(),
			})
			b.cfg.Logger.Debug(ctx, "Paper limit order cancelled", map[string]interface{}{"orderID": p.id, "age": p.age})
			continue
		}
		remaining = append(remaining, p)
	}
	b.pending = remaining

	b.lastBar[bar.Symbol] = bar

	events := b.events
	b.events = nil
	return events, nil
}

// Pending returns the number of resting limit orders.
func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// limitFill reports the fill price when bar trades through the limit. Gaps fill at the open.
func limitFill(intent domain.OrderIntent, bar *domain.Kline) (float64, bool) {
	if intent.Side == domain.Buy {
		if bar.Low > intent.LimitPrice {
			return 0, false
		}
		return math.Min(intent.LimitPrice, bar.Open), true
	}
	if bar.High < intent.LimitPrice {
		return 0, false
	}
	return math.Max(intent.LimitPrice, bar.Open), true
}

// fill applies a fill to the holdings and queues its event. Caller holds mu.
func (b *Broker) fill(ctx context.Context, id int64, intent domain.OrderIntent, price float64, bar *domain.Kline) {
	delta := intent.Quantity
	if intent.Side == domain.Sell {
		delta = -delta
	}

	h := b.holdings[intent.Symbol]
	h.Symbol = intent.Symbol
	newQty := h.Quantity + delta
	switch {
	case math.Abs(newQty) < epsilon:
		newQty, h.EntryPrice = 0, 0
	case h.Quantity == 0 || sameSign(h.Quantity, delta):
		h.EntryPrice = (h.EntryPrice*math.Abs(h.Quantity) + price*math.Abs(delta)) / math.Abs(newQty)
	case !sameSign(h.Quantity, newQty):
		h.EntryPrice = price // Flipped through zero
	}
	h.Quantity = newQty
	b.holdings[intent.Symbol] = h

	ev := domain.OrderEvent{
		OrderID:  id,
		Symbol:   intent.Symbol,
		Kind:     domain.OrderFilled,
		Side:     intent.Side,
		Type:     intent.Type,
		Quantity: intent.Quantity,
		Price:    price,
		Time:     bar.Timestamp(),
	}
	b.events = append(b.events, ev)
	b.cfg.Logger.Info(ctx, "Paper order filled", map[string]interface{}{
		"orderID":  id,
		"intent":   intent.String(),
		"price":    price,
		"position": h.Quantity,
	})
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
