package indicators

import "instantTrendBot/internal/domain"

// Indicator is a streaming technical indicator fed one observation at a time.
type Indicator interface {
	// Update consumes the next observation and returns the current value and readiness.
	Update(value float64) (float64, bool)

	// Current returns the value produced by the latest Update.
	Current() float64

	// IsReady reports whether enough observations have been seen.
	IsReady() bool

	// Reset discards all observations.
	Reset()

	// RequiredDataPoints returns the number of observations needed before IsReady holds.
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// TrendSource is an indicator that also produces a faster trigger line.
type TrendSource interface {
	Indicator

	// Trigger returns the trigger value computed alongside Current.
	Trigger() float64
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of observations needed
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

// PriceFunc selects the observation an indicator is fed from a bar.
type PriceFunc func(k *domain.Kline) float64

// ClosePrice feeds the closing price.
func ClosePrice(k *domain.Kline) float64 { return k.Close }

// MidPrice feeds (high+low)/2.
func MidPrice(k *domain.Kline) float64 { return k.Midpoint() }

// Feed runs every bar through ind and returns the value after each one.
func Feed(ind Indicator, klines []*domain.Kline, price PriceFunc) []float64 {
	out := make([]float64, 0, len(klines))
	for _, k := range klines {
		v, _ := ind.Update(price(k))
		out = append(out, v)
	}
	return out
}
