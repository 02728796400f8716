package indicators

import (
	"fmt"

	"instantTrendBot/internal/ports"
)

// DefaultInstantTrendAlpha is the smoothing factor used by Ehlers.
const DefaultInstantTrendAlpha = 0.07

const instantTrendWarmup = 7

// InstantTrendConfig configures the Ehlers instantaneous trendline.
type InstantTrendConfig struct {
	Alpha float64
}

// InstantTrend is the Ehlers instantaneous trendline filter with its
// trigger line (2*trend - trend two bars ago). It is usually fed bar midpoints.
type InstantTrend struct {
	alpha float64

	prices [3]float64 // newest first
	trend  [3]float64 // newest first
	n      int
}

// NewInstantTrend creates the filter. Alpha must lie in (0, 1).
func NewInstantTrend(config InstantTrendConfig) (*InstantTrend, error) {
	if config.Alpha <= 0 || config.Alpha >= 1 {
		return nil, fmt.Errorf("%w: instant trend alpha must be in (0,1), got %v", ports.ErrConfigurationError, config.Alpha)
	}
	return &InstantTrend{alpha: config.Alpha}, nil
}

// Name returns the name of the indicator
func (it *InstantTrend) Name() string {
	return "InstantTrend"
}

// RequiredDataPoints returns the number of prices consumed before the recursion takes over.
func (it *InstantTrend) RequiredDataPoints() int {
	return instantTrendWarmup
}

// Update consumes the next price and returns the trend value.
func (it *InstantTrend) Update(price float64) (float64, bool) {
	it.prices[2], it.prices[1], it.prices[0] = it.prices[1], it.prices[0], price
	it.n++

	a := it.alpha
	var v float64
	switch {
	case it.n < 3:
		v = price
	case it.n < instantTrendWarmup:
		v = (it.prices[0] + 2*it.prices[1] + it.prices[2]) / 4
	default:
		v = (a-a*a/4)*it.prices[0] +
			0.5*a*a*it.prices[1] -
			(a-0.75*a*a)*it.prices[2] +
			2*(1-a)*it.trend[0] -
			(1-a)*(1-a)*it.trend[1]
	}
	it.trend[2], it.trend[1], it.trend[0] = it.trend[1], it.trend[0], v
	return v, it.IsReady()
}

// Current returns the latest trend value.
func (it *InstantTrend) Current() float64 {
	return it.trend[0]
}

// Trigger returns 2*trend - trend two bars back, or the trend itself while fewer than three values exist.
func (it *InstantTrend) Trigger() float64 {
	if it.n < 3 {
		return it.trend[0]
	}
	return 2*it.trend[0] - it.trend[2]
}

// IsReady reports whether the filter recursion is running.
func (it *InstantTrend) IsReady() bool {
	return it.n >= instantTrendWarmup
}

// Reset discards all observations.
func (it *InstantTrend) Reset() {
	it.prices = [3]float64{}
	it.trend = [3]float64{}
	it.n = 0
}
