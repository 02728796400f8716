package indicators

import (
	"fmt"

	"instantTrendBot/internal/ports"
	"instantTrendBot/internal/utils"
)

// NeutralMomersion is reported until the indicator is ready, and whenever the
// window holds no momentum or reversion samples at all.
const NeutralMomersion = 50.0

// MomersionConfig configures the Momersion indicator. MinPeriod zero selects
// single-threshold mode, where readiness starts once more than FullPeriod
// samples have been seen. With MinPeriod set, readiness starts at MinPeriod
// samples, so MinPeriod == FullPeriod becomes ready one sample earlier than
// SingleThreshold(FullPeriod).
type MomersionConfig struct {
	MinPeriod  int
	FullPeriod int
}

// SingleThreshold is the single-parameter configuration.
func SingleThreshold(fullPeriod int) MomersionConfig {
	return MomersionConfig{FullPeriod: fullPeriod}
}

// Validate checks the periods.
func (c MomersionConfig) Validate() error {
	if c.FullPeriod < 2 {
		return fmt.Errorf("%w: momersion full period must be at least 2, got %d", ports.ErrConfigurationError, c.FullPeriod)
	}
	if c.MinPeriod < 0 {
		return fmt.Errorf("%w: momersion min period must not be negative, got %d", ports.ErrConfigurationError, c.MinPeriod)
	}
	if c.MinPeriod > c.FullPeriod {
		return fmt.Errorf("%w: momersion min period %d exceeds full period %d", ports.ErrConfigurationError, c.MinPeriod, c.FullPeriod)
	}
	return nil
}

func (c MomersionConfig) readyAfter() int {
	if c.MinPeriod > 0 {
		return c.MinPeriod
	}
	return c.FullPeriod + 1
}

type swing int8

const (
	swingNeutral   swing = 0
	swingMomentum  swing = 1
	swingReversion swing = -1
)

// Momersion measures the share of consecutive price changes that continue
// in the same direction (momentum) against those that turn around
// (reversion), over the latest FullPeriod change pairs.
type Momersion struct {
	config MomersionConfig

	window []swing // ring of the latest FullPeriod samples
	head   int
	filled int

	momentum  int
	reversion int
	neutral   int

	prices  [2]float64 // previous two observations, newest first
	seen    int        // observations consumed
	samples int        // swings classified, uncapped
	value   float64
	ready   bool
}

// NewMomersion creates the indicator, rejecting inconsistent periods.
func NewMomersion(config MomersionConfig) (*Momersion, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Momersion{
		config: config,
		window: make([]swing, config.FullPeriod),
		value:  NeutralMomersion,
	}, nil
}

// Name returns the name of the indicator
func (m *Momersion) Name() string {
	return "Momersion"
}

// RequiredDataPoints returns the number of observations before the first ready value.
func (m *Momersion) RequiredDataPoints() int {
	return m.config.readyAfter() + 2
}

// Update consumes the next price.
func (m *Momersion) Update(price float64) (float64, bool) {
	if m.seen >= 2 {
		m.push(classify(price, m.prices[0], m.prices[1]))
	}
	m.prices[1] = m.prices[0]
	m.prices[0] = price
	m.seen++

	m.ready = m.samples >= m.config.readyAfter()
	m.value = NeutralMomersion
	if m.ready && m.momentum+m.reversion > 0 {
		m.value = utils.RoundBank(100*float64(m.momentum)/float64(m.momentum+m.reversion), 2)
	}
	return m.value, m.ready
}

// Current returns the latest value.
func (m *Momersion) Current() float64 {
	return m.value
}

// IsReady reports whether the warm-up threshold has been reached.
func (m *Momersion) IsReady() bool {
	return m.ready
}

// Samples returns how many change pairs have been classified.
func (m *Momersion) Samples() int {
	return m.samples
}

// Reset discards all observations.
func (m *Momersion) Reset() {
	for i := range m.window {
		m.window[i] = swingNeutral
	}
	m.head, m.filled = 0, 0
	m.momentum, m.reversion, m.neutral = 0, 0, 0
	m.prices = [2]float64{}
	m.seen, m.samples = 0, 0
	m.value = NeutralMomersion
	m.ready = false
}

func (m *Momersion) push(s swing) {
	if m.filled == len(m.window) {
		m.count(m.window[m.head], -1)
	} else {
		m.filled++
	}
	m.window[m.head] = s
	m.head = (m.head + 1) % len(m.window)
	m.count(s, 1)
	m.samples++
}

func (m *Momersion) count(s swing, delta int) {
	switch s {
	case swingMomentum:
		m.momentum += delta
	case swingReversion:
		m.reversion += delta
	default:
		m.neutral += delta
	}
}

func classify(p0, p1, p2 float64) swing {
	product := (p0 - p1) * (p1 - p2)
	switch {
	case product > 0:
		return swingMomentum
	case product < 0:
		return swingReversion
	default:
		return swingNeutral
	}
}
