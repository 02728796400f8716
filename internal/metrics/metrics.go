package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"instantTrendBot/internal/domain"
)

// Recorder holds the bot's Prometheus collectors.
type Recorder struct {
	Decisions *prometheus.CounterVec
	Intents   *prometheus.CounterVec
	Faults    *prometheus.CounterVec
	Fills     *prometheus.CounterVec
	Momersion *prometheus.GaugeVec
	Position  *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "instant_trend_decisions_total", Help: "Engine steps by decision kind"},
			[]string{"symbol", "kind"},
		),
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "instant_trend_intents_total", Help: "Orders submitted by the engine"},
			[]string{"symbol", "side", "type"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "instant_trend_faults_total", Help: "Steps that ended in a fault"},
			[]string{"symbol"},
		),
		Fills: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "instant_trend_order_events_total", Help: "Broker fills and cancellations"},
			[]string{"symbol", "kind"},
		),
		Momersion: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "instant_trend_momersion", Help: "Latest Momersion reading"},
			[]string{"symbol"},
		),
		Position: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "instant_trend_position", Help: "Signed position quantity after the latest step"},
			[]string{"symbol"},
		),
	}
	for _, c := range []prometheus.Collector{r.Decisions, r.Intents, r.Faults, r.Fills, r.Momersion, r.Position} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveDecision records one journaled decision.
func (r *Recorder) ObserveDecision(d *domain.Decision) {
	r.Decisions.WithLabelValues(d.Symbol, string(d.Kind)).Inc()
	if d.Kind == domain.DecisionFault {
		r.Faults.WithLabelValues(d.Symbol).Inc()
	}
	if d.Intent != nil {
		r.Intents.WithLabelValues(d.Symbol, string(d.Intent.Side), string(d.Intent.Type)).Inc()
	}
	r.Momersion.WithLabelValues(d.Symbol).Set(d.Momersion)
}

// ObserveOrderEvent records a broker fill or cancellation.
func (r *Recorder) ObserveOrderEvent(ev domain.OrderEvent) {
	r.Fills.WithLabelValues(ev.Symbol, string(ev.Kind)).Inc()
}

// ObservePosition records the signed holding.
func (r *Recorder) ObservePosition(h domain.Holding) {
	r.Position.WithLabelValues(h.Symbol).Set(h.Quantity)
}

// Serve exposes gatherer on addr under /metrics. The server runs until closed.
func Serve(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
