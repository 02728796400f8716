package domain

import "math"

// Holding is the portfolio's view of one symbol.
type Holding struct {
	Symbol     string
	Quantity   float64 // Positive for long, negative for short, zero when flat
	EntryPrice float64 // Average price of the open quantity (0 when flat)
}

// Status derives the position direction from the signed quantity.
func (h Holding) Status() PositionStatus {
	switch {
	case h.Quantity > 0:
		return StatusLong
	case h.Quantity < 0:
		return StatusShort
	default:
		return StatusFlat
	}
}

// AbsQuantity is the unsigned size of the holding.
func (h Holding) AbsQuantity() float64 {
	return math.Abs(h.Quantity)
}

// IsOpen reports whether any quantity is held.
func (h Holding) IsOpen() bool {
	return h.Quantity != 0
}

// EntryContext is the bookkeeping the engine keeps about its own orders.
type EntryContext struct {
	EntryPrice      float64 // Price of the latest fill
	LimitPrice      float64 // Price of the latest limit entry, reset on reversal
	LastOrderFilled bool    // Supplied by order management, read by the engine
}
