package ports

import (
	"context"
	"time"

	"instantTrendBot/internal/domain"
)

// Portfolio exposes the current holding per symbol. The engine only reads it.
type Portfolio interface {
	// PositionOf returns the holding for symbol. A flat symbol yields a zero-quantity holding.
	PositionOf(ctx context.Context, symbol string) (domain.Holding, error)
}

// OrderRouter accepts order intents. It never blocks waiting for a fill.
type OrderRouter interface {
	// Submit hands the intent to order management and returns its identifier.
	// An identifier greater than zero means the order was accepted.
	Submit(ctx context.Context, intent domain.OrderIntent) (int64, error)
}

// Broker is the full order-management collaborator seen by the bar driver.
type Broker interface {
	Portfolio
	OrderRouter

	// ProcessBar advances the broker to bar and returns the fills and
	// cancellations that happened since the previous bar.
	ProcessBar(ctx context.Context, bar *domain.Kline) ([]domain.OrderEvent, error)
}

// MarketDataSource downloads historical bars.
type MarketDataSource interface {
	// GetKlines retrieves the latest limit bars for symbol.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error)
	// GetKlinesRange retrieves every bar between start and end.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}
