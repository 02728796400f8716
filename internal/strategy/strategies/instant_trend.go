package strategies

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"instantTrendBot/internal/domain"
	"instantTrendBot/internal/ports"
)

const (
	DefaultTrendPeriod    = 3
	DefaultReversalFactor = 1.0015
	DefaultRangeFraction  = 0.35

	minTrendPeriod = 3 // the projection reads history[2]
)

// InstantTrendConfig holds configuration for the instant trend engine
type InstantTrendConfig struct {
	Symbol         string
	TrendPeriod    int     // Capacity of the trend history (>= 3)
	ReversalFactor float64 // Projection must cross entry*factor (or entry/factor) to reverse
	RangeFraction  float64 // Share of the bar range a limit entry is placed away from the close
	SellOutAtEOD   bool
	Liquidation    SessionWindow
}

// DefaultInstantTrendConfig returns the stock parameters for symbol.
func DefaultInstantTrendConfig(symbol string) InstantTrendConfig {
	return InstantTrendConfig{
		Symbol:         symbol,
		TrendPeriod:    DefaultTrendPeriod,
		ReversalFactor: DefaultReversalFactor,
		RangeFraction:  DefaultRangeFraction,
		SellOutAtEOD:   true,
		Liquidation:    DefaultLiquidationWindow(),
	}
}

// Validate checks the configuration.
func (c InstantTrendConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ports.ErrConfigurationError)
	}
	if c.TrendPeriod < minTrendPeriod {
		return fmt.Errorf("%w: trend period must be at least %d, got %d", ports.ErrConfigurationError, minTrendPeriod, c.TrendPeriod)
	}
	if c.ReversalFactor <= 1 {
		return fmt.Errorf("%w: reversal factor must be greater than 1, got %v", ports.ErrConfigurationError, c.ReversalFactor)
	}
	if c.RangeFraction < 0 {
		return fmt.Errorf("%w: range fraction must not be negative, got %v", ports.ErrConfigurationError, c.RangeFraction)
	}
	if c.SellOutAtEOD {
		if err := c.Liquidation.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ports.ErrConfigurationError, err)
		}
	}
	return nil
}

// InstantTrendEngine turns trend/trigger observations into entries on
// crossovers, reverses positions whose projected trend runs against the
// entry price, and flattens inside the end-of-day window.
//
// An engine serves one symbol and is not safe for concurrent use.
type InstantTrendEngine struct {
	*BaseStrategy
	config    InstantTrendConfig
	portfolio ports.Portfolio
	router    ports.OrderRouter

	history   *trendHistory
	crossover domain.CrossoverState
	status    domain.PositionStatus
	entry     domain.EntryContext
}

var _ ports.BarExecutor = (*InstantTrendEngine)(nil)

// NewInstantTrendEngine creates a new engine instance
func NewInstantTrendEngine(config InstantTrendConfig, portfolio ports.Portfolio, router ports.OrderRouter, logger ports.Logger) (*InstantTrendEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if portfolio == nil || router == nil {
		return nil, fmt.Errorf("%w: portfolio and order router are required", ports.ErrConfigurationError)
	}
	base, err := NewBaseStrategy("InstantTrend", logger)
	if err != nil {
		return nil, err
	}

	return &InstantTrendEngine{
		BaseStrategy: base,
		config:       config,
		portfolio:    portfolio,
		router:       router,
		history:      newTrendHistory(config.TrendPeriod),
		crossover:    domain.CrossoverNone,
		status:       domain.StatusFlat,
		entry:        domain.EntryContext{LastOrderFilled: true},
	}, nil
}

// RequiredDataPoints returns the number of trend values needed before decisions
func (e *InstantTrendEngine) RequiredDataPoints() int {
	return e.config.TrendPeriod
}

// Crossover returns the direction of the last crossover.
func (e *InstantTrendEngine) Crossover() domain.CrossoverState { return e.crossover }

// Status returns the position direction seen on the latest step.
func (e *InstantTrendEngine) Status() domain.PositionStatus { return e.status }

// Entry returns a copy of the entry bookkeeping.
func (e *InstantTrendEngine) Entry() domain.EntryContext { return e.entry }

// SetEntryPrice records the price the current position was entered at.
func (e *InstantTrendEngine) SetEntryPrice(price float64) { e.entry.EntryPrice = price }

// SetLastOrderFilled records whether the latest order has been confirmed filled.
func (e *InstantTrendEngine) SetLastOrderFilled(filled bool) { e.entry.LastOrderFilled = filled }

// OnOrderEvent applies a fill or cancellation reported by the broker.
func (e *InstantTrendEngine) OnOrderEvent(ev domain.OrderEvent) {
	if ev.Symbol != "" && ev.Symbol != e.config.Symbol {
		return
	}
	switch ev.Kind {
	case domain.OrderFilled:
		e.entry.EntryPrice = ev.Price
		e.entry.LastOrderFilled = true
	case domain.OrderCancelled:
		e.entry.LastOrderFilled = false
	}
}

// Step evaluates one bar. It never returns an error: collaborator failures
// and panics are reported through StepResult.Fault and leave the crossover
// state as it was for this step.
func (e *InstantTrendEngine) Step(ctx context.Context, bar *domain.Kline, tradeSize, trendValue, triggerValue float64) (res domain.StepResult) {
	res = domain.StepResult{
		Symbol:  e.config.Symbol,
		Kind:    domain.DecisionHold,
		Trend:   trendValue,
		Trigger: triggerValue,
	}
	defer func() {
		if r := recover(); r != nil {
			intent, id := res.Intent, res.OrderID
			e.fault(ctx, &res, fmt.Errorf("%w: %v", ports.ErrStepPanic, r))
			if intent != nil {
				// The router already accepted this order.
				res.Intent, res.OrderID = intent, id
			}
		}
		res.Status = e.status
		res.Crossover = e.crossover
	}()

	if bar == nil {
		e.fault(ctx, &res, fmt.Errorf("%w: nil bar", ports.ErrInvalidRequest))
		return res
	}
	res.BarTime = bar.Timestamp()
	if bar.Symbol != "" && bar.Symbol != e.config.Symbol {
		e.fault(ctx, &res, fmt.Errorf("%w: got %s, want %s", ports.ErrSymbolMismatch, bar.Symbol, e.config.Symbol))
		return res
	}

	e.history.Add(trendValue)
	holding, err := e.portfolio.PositionOf(ctx, e.config.Symbol)
	if err != nil {
		e.fault(ctx, &res, fmt.Errorf("%w: %w", ports.ErrPositionUnavailable, err))
		return res
	}
	e.status = holding.Status()

	if !e.history.Ready() {
		res.Kind = domain.DecisionNotReady
		res.Rationale = "Trend not ready"
		return res
	}

	if e.config.SellOutAtEOD && e.config.Liquidation.Contains(bar.Timestamp()) {
		if err := e.liquidate(ctx, &res, holding); err != nil {
			e.fault(ctx, &res, err)
		}
		return res
	}

	proj := 2*e.history.At(0) - e.history.At(2)
	res.Projection = proj

	reversed, err := e.reverse(ctx, &res, holding, proj)
	if err != nil {
		e.fault(ctx, &res, err)
		return res
	}
	if reversed {
		return res
	}

	if err := e.cross(ctx, &res, bar, tradeSize, proj); err != nil {
		e.fault(ctx, &res, err)
	}
	return res
}

func (e *InstantTrendEngine) liquidate(ctx context.Context, res *domain.StepResult, holding domain.Holding) error {
	if !holding.IsOpen() {
		res.Kind = domain.DecisionEndOfDay
		res.Rationale = "Inside liquidation window, flat"
		return nil
	}

	side := domain.Sell
	if holding.Status() == domain.StatusShort {
		side = domain.Buy
	}
	intent := domain.MarketOrder(e.config.Symbol, side, holding.AbsQuantity(), "EOD Liquidation")
	if err := e.submit(ctx, res, intent); err != nil {
		return err
	}
	res.Kind = domain.DecisionLiquidate
	res.Rationale = fmt.Sprintf("End of day liquidation of %s %v", holding.Status(), holding.AbsQuantity())
	return nil
}

func (e *InstantTrendEngine) reverse(ctx context.Context, res *domain.StepResult, holding domain.Holding, proj float64) (bool, error) {
	entryPrice := e.entry.EntryPrice
	if entryPrice <= 0 {
		if holding.IsOpen() {
			e.logger.Debug(ctx, "Reversal check skipped, entry price unknown", map[string]interface{}{
				"symbol":   e.config.Symbol,
				"status":   string(e.status),
				"quantity": holding.Quantity,
			})
		}
		return false, nil
	}

	var (
		side      domain.OrderSide
		newStatus domain.PositionStatus
		rationale string
	)
	switch {
	case e.status == domain.StatusLong && proj < entryPrice/e.config.ReversalFactor:
		side, newStatus = domain.Sell, domain.StatusShort
		rationale = fmt.Sprintf("Long reverse to short: projection %.4f < %.4f / %v", proj, entryPrice, e.config.ReversalFactor)
	case e.status == domain.StatusShort && proj > entryPrice*e.config.ReversalFactor:
		side, newStatus = domain.Buy, domain.StatusLong
		rationale = fmt.Sprintf("Short reverse to long: projection %.4f > %.4f * %v", proj, entryPrice, e.config.ReversalFactor)
	default:
		return false, nil
	}

	intent := domain.MarketOrder(e.config.Symbol, side, 2*holding.AbsQuantity(), "Reverse")
	if err := e.submit(ctx, res, intent); err != nil {
		return false, err
	}
	e.entry.LimitPrice = 0
	e.entry.LastOrderFilled = res.OrderID > 0
	e.status = newStatus
	res.Kind = domain.DecisionReverse
	res.Rationale = rationale
	return true, nil
}

func (e *InstantTrendEngine) cross(ctx context.Context, res *domain.StepResult, bar *domain.Kline, tradeSize, proj float64) error {
	latest := e.history.At(0)
	switch {
	case proj > latest:
		if e.crossover == domain.CrossoverDown && e.status != domain.StatusLong {
			if err := e.enter(ctx, res, bar, domain.Buy, tradeSize); err != nil {
				return err
			}
		}
		if res.Rationale == "" {
			res.Rationale = "Trigger over trend"
		}
		e.crossover = domain.CrossoverUp
	case proj < latest:
		if e.crossover == domain.CrossoverUp && e.status != domain.StatusShort {
			if err := e.enter(ctx, res, bar, domain.Sell, tradeSize); err != nil {
				return err
			}
		}
		if res.Rationale == "" {
			res.Rationale = "Trigger under trend"
		}
		e.crossover = domain.CrossoverDown
	}
	return nil
}

func (e *InstantTrendEngine) enter(ctx context.Context, res *domain.StepResult, bar *domain.Kline, side domain.OrderSide, tradeSize float64) error {
	if tradeSize <= 0 {
		return fmt.Errorf("%w: trade size must be positive, got %v", ports.ErrInvalidRequest, tradeSize)
	}
	direction := "long"
	if side == domain.Sell {
		direction = "short"
	}

	if !e.entry.LastOrderFilled {
		intent := domain.MarketOrder(e.config.Symbol, side, tradeSize, "Entry after cancel")
		if err := e.submit(ctx, res, intent); err != nil {
			return err
		}
		res.Kind = domain.DecisionEnter
		res.Rationale = fmt.Sprintf("Enter %s at market after unfilled order", direction)
		return nil
	}

	price := e.limitPrice(bar, side)
	intent := domain.LimitOrder(e.config.Symbol, side, tradeSize, price, fmt.Sprintf("%s limit", direction))
	if err := e.submit(ctx, res, intent); err != nil {
		return err
	}
	e.entry.LimitPrice = price
	res.Kind = domain.DecisionEnter
	res.Rationale = fmt.Sprintf("Enter %s limit at %.2f", direction, price)
	return nil
}

// limitPrice places a buy a fraction of the bar range below the close (never
// under the low) and a sell the same distance above (never over the high).
func (e *InstantTrendEngine) limitPrice(bar *domain.Kline, side domain.OrderSide) float64 {
	high := decimal.NewFromFloat(bar.High)
	low := decimal.NewFromFloat(bar.Low)
	closePrice := decimal.NewFromFloat(bar.Close)
	offset := high.Sub(low).Mul(decimal.NewFromFloat(e.config.RangeFraction))

	var price decimal.Decimal
	if side == domain.Buy {
		price = decimal.Max(low, closePrice.Sub(offset))
	} else {
		price = decimal.Min(high, closePrice.Add(offset))
	}
	return price.RoundBank(2).InexactFloat64()
}

func (e *InstantTrendEngine) submit(ctx context.Context, res *domain.StepResult, intent domain.OrderIntent) error {
	if err := intent.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err)
	}
	id, err := e.router.Submit(ctx, intent)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrOrderPlacementFailed, err)
	}
	res.Intent = &intent
	res.OrderID = id
	if id <= 0 {
		e.logger.Warn(ctx, "Order was not accepted by the router", map[string]interface{}{
			"symbol": intent.Symbol,
			"intent": intent.String(),
			"id":     id,
		})
	}
	return nil
}

func (e *InstantTrendEngine) fault(ctx context.Context, res *domain.StepResult, err error) {
	fields := map[string]interface{}{
		"symbol": e.config.Symbol,
		"bar":    res.BarTime,
	}
	if res.Intent != nil {
		fields["submittedOrderID"] = res.OrderID
		fields["submittedIntent"] = res.Intent.String()
	}
	res.Kind = domain.DecisionFault
	res.Rationale = ""
	res.Intent = nil
	res.OrderID = 0
	res.Fault = err
	e.logger.Error(ctx, err, "Instant trend step failed", fields)
}
