package domain

import "time"

// StepResult is the outcome of one engine step. A result with Fault set must be
// treated by callers exactly like "no action taken", except that Intent stays
// set when the order had already been accepted before a panic was recovered.
type StepResult struct {
	Symbol     string
	BarTime    time.Time
	Kind       DecisionKind
	Rationale  string
	Trend      float64
	Trigger    float64
	Projection float64
	Status     PositionStatus // Status after the step
	Crossover  CrossoverState // Crossover state after the step
	Intent     *OrderIntent   // Nil unless an order was submitted this step
	OrderID    int64
	Fault      error
}

// HasIntent reports whether the step emitted an order.
func (r StepResult) HasIntent() bool {
	return r.Intent != nil
}

// Decision is the journaled form of a step, enriched with the Momersion reading
// taken on the same bar.
type Decision struct {
	ID             int64
	Symbol         string
	BarTime        time.Time
	Kind           DecisionKind
	Rationale      string
	Trend          float64
	Trigger        float64
	Projection     float64
	Status         PositionStatus
	Crossover      CrossoverState
	Intent         *OrderIntent
	OrderID        int64
	Momersion      float64
	MomersionReady bool
	Regime         Regime
	Fault          string
}

// NewDecision copies a step result into a journal record.
func NewDecision(res StepResult, momersion float64, ready bool) *Decision {
	d := &Decision{
		Symbol:         res.Symbol,
		BarTime:        res.BarTime,
		Kind:           res.Kind,
		Rationale:      res.Rationale,
		Trend:          res.Trend,
		Trigger:        res.Trigger,
		Projection:     res.Projection,
		Status:         res.Status,
		Crossover:      res.Crossover,
		Intent:         res.Intent,
		OrderID:        res.OrderID,
		Momersion:      momersion,
		MomersionReady: ready,
		Regime:         ClassifyRegime(momersion, ready),
	}
	if res.Fault != nil {
		d.Fault = res.Fault.Error()
	}
	return d
}
