package strategies

import (
	"fmt"

	"instantTrendBot/internal/ports"
)

// BaseStrategy provides common functionality for strategies
type BaseStrategy struct {
	logger ports.Logger
	name   string
}

// NewBaseStrategy creates a new base strategy instance
func NewBaseStrategy(name string, logger ports.Logger) (*BaseStrategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	return &BaseStrategy{
		logger: logger,
		name:   name,
	}, nil
}

// Name returns the name of the strategy
func (b *BaseStrategy) Name() string {
	return b.name
}
