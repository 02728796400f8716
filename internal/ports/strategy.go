package ports

import (
	"context"

	"instantTrendBot/internal/domain"
)

// BarExecutor is a per-symbol strategy that turns one bar plus upstream
// signals into at most one order.
type BarExecutor interface {
	// Step evaluates the bar. Faults are reported in the result, never returned.
	Step(ctx context.Context, bar *domain.Kline, tradeSize, trendValue, triggerValue float64) domain.StepResult

	// OnOrderEvent feeds fill confirmations and cancellations back to the strategy.
	OnOrderEvent(ev domain.OrderEvent)

	// RequiredDataPoints returns how many signal observations are needed before decisions.
	RequiredDataPoints() int

	// Name returns the name of the strategy.
	Name() string
}
