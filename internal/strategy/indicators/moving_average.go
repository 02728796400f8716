package indicators

import (
	"fmt"

	"instantTrendBot/internal/ports"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA as a streaming trend source.
// The trigger is 2*average - average two observations back.
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig

	window []float64 // ring of the latest Period inputs
	head   int
	sum    float64
	n      int

	values [3]float64 // averages, newest first
	k      float64
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) (*MovingAverage, error) {
	if config.Period < 1 {
		return nil, fmt.Errorf("%w: moving average period must be positive, got %d", ports.ErrConfigurationError, config.Period)
	}
	switch config.Type {
	case SimpleMovingAverage, ExponentialMovingAverage:
	default:
		return nil, fmt.Errorf("%w: unsupported moving average type: %s", ports.ErrConfigurationError, config.Type)
	}
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
		window:        make([]float64, config.Period),
		k:             2.0 / float64(config.Period+1),
	}, nil
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s(%d)", m.config.Type, m.Config.Period)
}

// RequiredDataPoints covers the seed window plus the two averages the trigger looks back on.
func (m *MovingAverage) RequiredDataPoints() int {
	return m.Config.Period + 2
}

// Update consumes the next value. Before Period values are seen the running mean is reported.
func (m *MovingAverage) Update(value float64) (float64, bool) {
	period := m.Config.Period
	if m.n >= period {
		m.sum -= m.window[m.head]
	}
	m.window[m.head] = value
	m.head = (m.head + 1) % period
	m.sum += value
	m.n++

	count := m.n
	if count > period {
		count = period
	}
	avg := m.sum / float64(count)
	// EMA is seeded with the SMA of the first Period values.
	if m.config.Type == ExponentialMovingAverage && m.n > period {
		avg = (value-m.values[0])*m.k + m.values[0]
	}
	m.values[2], m.values[1], m.values[0] = m.values[1], m.values[0], avg
	return avg, m.IsReady()
}

// Current returns the latest average.
func (m *MovingAverage) Current() float64 {
	return m.values[0]
}

// Trigger returns 2*average - average two observations back.
func (m *MovingAverage) Trigger() float64 {
	if m.n < 3 {
		return m.values[0]
	}
	return 2*m.values[0] - m.values[2]
}

// IsReady reports whether the seed window is full and two further averages exist.
func (m *MovingAverage) IsReady() bool {
	return m.n >= m.RequiredDataPoints()
}

// Reset discards all observations.
func (m *MovingAverage) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.head, m.sum, m.n = 0, 0, 0
	m.values = [3]float64{}
}
