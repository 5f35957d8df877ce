// Package metrics exposes Prometheus instrumentation for the calculator pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/handcalc/internal/calculator"
)

const namespace = "handcalc"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesProcessed   prometheus.Counter
	SymbolsConfirmed  *prometheus.CounterVec
	SymbolsRejected   prometheus.Counter
	SymbolsDropped    prometheus.Counter
	Calculations      *prometheus.CounterVec
	CalculationErrors prometheus.Counter
	DetectErrors      prometheus.Counter
	Stage             prometheus.Gauge
	Enabled           prometheus.Gauge
	FrameDuration     prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Frames that reached the gesture engine.",
		}),
		SymbolsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_confirmed_total",
			Help:      "Gesture symbols confirmed by the stabilizer, by stage they arrived in.",
		}, []string{"stage"}),
		SymbolsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_rejected_total",
			Help:      "Confirmed symbols that were not valid operator codes.",
		}),
		SymbolsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_dropped_total",
			Help:      "Confirmed symbols ignored while a result was displayed.",
		}),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Completed calculations by operator.",
		}, []string{"operator"}),
		CalculationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_errors_total",
			Help:      "Calculations that produced Error.",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detect_errors_total",
			Help:      "Frames the hand detector failed on.",
		}),
		Stage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage",
			Help:      "Current calculator stage (0=A, 1=B, 2=Operation, 3=Result).",
		}),
		Enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enabled",
			Help:      "1 while gesture processing is enabled.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent detecting and processing one frame.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.SymbolsConfirmed,
		m.SymbolsRejected,
		m.SymbolsDropped,
		m.Calculations,
		m.CalculationErrors,
		m.DetectErrors,
		m.Stage,
		m.Enabled,
		m.FrameDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOutcome records what a processed frame did to the engine.
func (m *Metrics) ObserveOutcome(o calculator.Outcome) {
	if !o.Processed {
		return
	}
	m.FramesProcessed.Inc()

	t := o.Transition
	if t == nil {
		return
	}
	m.SymbolsConfirmed.WithLabelValues(t.From.String()).Inc()

	switch {
	case t.Rejected:
		m.SymbolsRejected.Inc()
	case t.Dropped:
		m.SymbolsDropped.Inc()
	case t.Entry != nil:
		m.Calculations.WithLabelValues(t.Entry.Operator.Symbol()).Inc()
		if t.Entry.Result.IsError() {
			m.CalculationErrors.Inc()
		}
	}
	m.Stage.Set(float64(t.To))
}

// SetStage records the current stage.
func (m *Metrics) SetStage(s calculator.Stage) {
	m.Stage.Set(float64(s))
}

// SetEnabled records the processing toggle.
func (m *Metrics) SetEnabled(enabled bool) {
	if enabled {
		m.Enabled.Set(1)
		return
	}
	m.Enabled.Set(0)
}
