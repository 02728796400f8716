package domain

import "time"

// Kline represents a single OHLC bar for a symbol.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string
	Interval  string // e.g. "1m"
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	IsFinal   bool // Whether this kline is the final one for the interval
}

// Timestamp returns the time the bar is stamped with. Bars follow the
// market-close convention: the close time when known, the open time otherwise.
func (k *Kline) Timestamp() time.Time {
	if !k.CloseTime.IsZero() {
		return k.CloseTime
	}
	return k.OpenTime
}

// Range is the high-low span of the bar.
func (k *Kline) Range() float64 {
	return k.High - k.Low
}

// Midpoint is (high+low)/2, the price fed to the Ehlers trend filters.
func (k *Kline) Midpoint() float64 {
	return (k.High + k.Low) / 2
}
