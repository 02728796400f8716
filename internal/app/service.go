package app

import (
	"context"
	"fmt"

	"instantTrendBot/config"
	"instantTrendBot/internal/domain"
	"instantTrendBot/internal/metrics"
	"instantTrendBot/internal/ports"
	"instantTrendBot/internal/strategy/indicators"
)

// Service drives one symbol bar by bar: it settles the broker, updates the
// upstream indicators, asks the engine for a decision and journals it.
type Service struct {
	cfg     *config.Config
	logger  ports.Logger
	broker  ports.Broker
	engine  ports.BarExecutor
	trend   indicators.TrendSource
	ratio   indicators.Indicator
	journal ports.JournalRepository
	metrics *metrics.Recorder // Optional
}

// Summary aggregates a replay.
type Summary struct {
	Bars          int
	Decisions     int
	Intents       int
	Faults        int
	Fills         int
	Cancels       int
	Final         domain.Holding
	LastMomersion float64
}

// NewService creates a new driver instance. rec may be nil.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	broker ports.Broker,
	engine ports.BarExecutor,
	trend indicators.TrendSource,
	ratio indicators.Indicator,
	journal ports.JournalRepository,
	rec *metrics.Recorder,
) (*Service, error) {
	if cfg == nil || logger == nil || broker == nil || engine == nil || trend == nil || ratio == nil || journal == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("configuration Symbol must be set")
	}
	if cfg.TradeSize <= 0 {
		return nil, fmt.Errorf("configuration TradeSize must be positive")
	}

	return &Service{
		cfg:     cfg,
		logger:  logger,
		broker:  broker,
		engine:  engine,
		trend:   trend,
		ratio:   ratio,
		journal: journal,
		metrics: rec,
	}, nil
}

// ProcessBar runs one bar through the pipeline and returns the journaled decision.
// Engine faults are part of the decision; the returned error is reserved for
// broker and journal failures.
func (s *Service) ProcessBar(ctx context.Context, bar *domain.Kline) (*domain.Decision, error) {
	d, _, err := s.process(ctx, bar)
	return d, err
}

func (s *Service) process(ctx context.Context, bar *domain.Kline) (*domain.Decision, []domain.OrderEvent, error) {
	if bar == nil {
		return nil, nil, fmt.Errorf("%w: nil bar", ports.ErrInvalidRequest)
	}
	if bar.Symbol == "" {
		bar.Symbol = s.cfg.Symbol
	}

	events, err := s.settle(ctx, bar)
	if err != nil {
		return nil, nil, err
	}

	trendValue, trendReady := s.trend.Update(indicators.MidPrice(bar))
	triggerValue := s.trend.Trigger()
	momersion, momersionReady := s.ratio.Update(indicators.ClosePrice(bar))

	var res domain.StepResult
	if !trendReady {
		res = domain.StepResult{
			Symbol:    bar.Symbol,
			BarTime:   bar.Timestamp(),
			Kind:      domain.DecisionNotReady,
			Rationale: "Trend source warming up",
			Crossover: domain.CrossoverNone,
			Status:    domain.StatusFlat,
		}
		if holding, err := s.broker.PositionOf(ctx, bar.Symbol); err == nil {
			res.Status = holding.Status()
		}
	} else {
		res = s.engine.Step(ctx, bar, s.cfg.TradeSize, trendValue, triggerValue)
	}

	decision := domain.NewDecision(res, momersion, momersionReady)
	if _, err := s.journal.SaveDecision(ctx, decision); err != nil {
		return nil, events, fmt.Errorf("failed to journal decision: %w", err)
	}

	if res.Fault != nil {
		s.logger.Warn(ctx, "Engine step faulted", map[string]interface{}{
			"symbol": bar.Symbol, "barTime": decision.BarTime, "fault": decision.Fault,
		})
	} else if res.HasIntent() {
		s.logger.Info(ctx, "Order submitted", map[string]interface{}{
			"symbol": bar.Symbol, "kind": string(res.Kind), "intent": res.Intent.String(),
			"orderID": res.OrderID, "rationale": res.Rationale, "momersion": momersion,
			"regime": string(decision.Regime),
		})
	} else {
		s.logger.Debug(ctx, "Bar processed", map[string]interface{}{
			"symbol": bar.Symbol, "kind": string(res.Kind), "rationale": res.Rationale,
			"trend": trendValue, "trigger": triggerValue, "momersion": momersion,
		})
	}

	if s.metrics != nil {
		s.metrics.ObserveDecision(decision)
		if holding, err := s.broker.PositionOf(ctx, bar.Symbol); err == nil {
			s.metrics.ObservePosition(holding)
		}
	}
	return decision, events, nil
}

// settle advances the broker to bar and forwards fills and cancellations.
func (s *Service) settle(ctx context.Context, bar *domain.Kline) ([]domain.OrderEvent, error) {
	events, err := s.broker.ProcessBar(ctx, bar)
	if err != nil {
		return nil, fmt.Errorf("broker failed to process bar: %w", err)
	}
	for i := range events {
		ev := events[i]
		s.engine.OnOrderEvent(ev)
		if _, err := s.journal.SaveOrderEvent(ctx, &ev); err != nil {
			return nil, fmt.Errorf("failed to journal order event %d: %w", ev.OrderID, err)
		}
		if s.metrics != nil {
			s.metrics.ObserveOrderEvent(ev)
		}
		s.logger.Info(ctx, "Order event", map[string]interface{}{
			"orderID": ev.OrderID, "kind": string(ev.Kind), "side": string(ev.Side),
			"quantity": ev.Quantity, "price": ev.Price,
		})
	}
	return events, nil
}

// Run replays bars in order until they are exhausted or ctx is cancelled.
func (s *Service) Run(ctx context.Context, bars []*domain.Kline) (*Summary, error) {
	s.logger.Info(ctx, "Starting replay", map[string]interface{}{
		"symbol": s.cfg.Symbol, "bars": len(bars), "engine": s.engine.Name(), "trendSource": s.trend.Name(),
	})

	sum := &Summary{}
	for _, bar := range bars {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Replay cancelled", map[string]interface{}{"processed": sum.Bars})
			return sum, fmt.Errorf("%w: %v", ports.ErrContextCanceled, ctx.Err())
		default:
		}

		d, events, err := s.process(ctx, bar)
		for _, ev := range events {
			switch ev.Kind {
			case domain.OrderFilled:
				sum.Fills++
			case domain.OrderCancelled:
				sum.Cancels++
			}
		}
		if err != nil {
			return sum, err
		}

		sum.Bars++
		sum.Decisions++
		sum.LastMomersion = d.Momersion
		if d.Intent != nil {
			sum.Intents++
		}
		if d.Kind == domain.DecisionFault {
			sum.Faults++
		}
	}

	holding, err := s.broker.PositionOf(ctx, s.cfg.Symbol)
	if err != nil {
		return sum, fmt.Errorf("%w: %w", ports.ErrPositionUnavailable, err)
	}
	sum.Final = holding

	s.logger.Info(ctx, "Replay finished", map[string]interface{}{
		"bars": sum.Bars, "intents": sum.Intents, "faults": sum.Faults,
		"fills": sum.Fills, "cancels": sum.Cancels, "position": holding.Quantity,
	})
	return sum, nil
}
