package ports

import (
	"context"

	"instantTrendBot/internal/domain"
)

// JournalRepository persists per-bar decisions and broker order events.
type JournalRepository interface {
	// SaveDecision stores a decision and returns its assigned ID.
	SaveDecision(ctx context.Context, d *domain.Decision) (int64, error)
	// FindDecisionsBySymbol retrieves the most recent decisions for a symbol, newest first.
	FindDecisionsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Decision, error)
	// CountIntentsBySymbol counts the decisions that emitted an order.
	CountIntentsBySymbol(ctx context.Context, symbol string) (int, error)
	// SaveOrderEvent stores a fill or cancellation and returns its assigned ID.
	SaveOrderEvent(ctx context.Context, ev *domain.OrderEvent) (int64, error)
	// FindOrderEventsBySymbol retrieves the most recent order events for a symbol, newest first.
	FindOrderEventsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.OrderEvent, error)
}
