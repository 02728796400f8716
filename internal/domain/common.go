package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Opposite returns the side that closes exposure opened by s.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType distinguishes market orders from resting limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// PositionStatus is the direction of the current holding for a symbol.
type PositionStatus string

const (
	StatusFlat  PositionStatus = "flat"
	StatusLong  PositionStatus = "long"
	StatusShort PositionStatus = "short"
)

// CrossoverState remembers the direction of the last trigger/trend crossover.
type CrossoverState string

const (
	CrossoverNone CrossoverState = "none"
	CrossoverUp   CrossoverState = "up"
	CrossoverDown CrossoverState = "down"
)

// DecisionKind classifies the outcome of a single engine step.
type DecisionKind string

const (
	DecisionNotReady  DecisionKind = "NOT_READY"
	DecisionHold      DecisionKind = "HOLD"
	DecisionEndOfDay  DecisionKind = "END_OF_DAY" // Inside the liquidation window while flat
	DecisionLiquidate DecisionKind = "LIQUIDATE"
	DecisionReverse   DecisionKind = "REVERSE"
	DecisionEnter     DecisionKind = "ENTER"
	DecisionFault     DecisionKind = "FAULT"
)

// Regime labels the Momersion reading.
type Regime string

const (
	RegimeNeutral   Regime = "neutral"
	RegimeMomentum  Regime = "momentum"
	RegimeReversion Regime = "reversion"
)

// ClassifyRegime maps a Momersion value onto a regime label. Values are only
// meaningful when the indicator reported ready.
func ClassifyRegime(value float64, ready bool) Regime {
	switch {
	case !ready:
		return RegimeNeutral
	case value > 50:
		return RegimeMomentum
	case value < 50:
		return RegimeReversion
	default:
		return RegimeNeutral
	}
}
