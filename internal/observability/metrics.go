package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "temperature_anomaly"

// Metrics holds the Prometheus collectors for dataset processing and live checks.
type Metrics struct {
	DatasetLoads     *prometheus.CounterVec // labels: outcome={success,malformed,error}
	RowsIngested     prometheus.Counter
	DatasetRows      prometheus.Gauge
	PipelineDuration prometheus.Histogram
	AnomaliesFlagged prometheus.Counter

	LiveChecks *prometheus.CounterVec // labels: outcome={normal,anomaly,error}

	ProviderFetches       *prometheus.CounterVec   // labels: provider, outcome={success,error}
	ProviderFetchDuration *prometheus.HistogramVec // labels: provider
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Total observations accepted from loaded datasets.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Number of observations in the current dataset.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of the baseline, anomaly and smoothing pipeline.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		AnomaliesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_flagged_total",
			Help:      "Historical observations flagged as anomalous.",
		}),
		LiveChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_checks_total",
			Help:      "Live temperature comparisons by outcome.",
		}, []string{"outcome"}),
		ProviderFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Weather provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Weather provider fetch duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.RowsIngested,
		m.DatasetRows,
		m.PipelineDuration,
		m.AnomaliesFlagged,
		m.LiveChecks,
		m.ProviderFetches,
		m.ProviderFetchDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many
// as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
