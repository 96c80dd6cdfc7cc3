package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "economizer"

// Fetch outcome label values.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeTimeout     = "timeout"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one
// evaluator process. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	Fetches         *prometheus.CounterVec // labels: outcome={success,unavailable,timeout}
	FetchDuration   prometheus.Histogram
	Evaluations     *prometheus.CounterVec // labels: mode={heating,cooling}
	IneffectiveWind *prometheus.CounterVec // labels: reason={variable,calm}
	StaleReports    prometheus.Counter
	LastHeatFlow    prometheus.Gauge
	PublishErrors   prometheus.Counter
}

// NewMetrics creates the evaluator metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metar_fetches_total",
			Help:      "METAR report fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metar_fetch_duration_seconds",
			Help:      "Duration of a METAR report fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Completed economizer evaluations by mode.",
		}, []string{"mode"}),
		IneffectiveWind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ineffective_wind_total",
			Help:      "Reports rejected for variable or calm wind.",
		}, []string{"reason"}),
		StaleReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_reports_total",
			Help:      "Reports older than STALE_AFTER at evaluation time.",
		}),
		LastHeatFlow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_heat_flow_btu_per_hour",
			Help:      "Signed heat flow of the latest evaluation; negative is heating.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Evaluations that could not be written to the result sink.",
		}),
	}

	m.registry.MustRegister(
		m.Fetches,
		m.FetchDuration,
		m.Evaluations,
		m.IneffectiveWind,
		m.StaleReports,
		m.LastHeatFlow,
		m.PublishErrors,
	)

	return m
}

// Gatherer exposes the registry, e.g. for promhttp or testutil.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for pickup by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
