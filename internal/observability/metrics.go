package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the series service.
type Metrics struct {
	// Query metrics.
	Queries *prometheus.CounterVec // labels: op={total,delta,cumulative,locations,summary,days}, outcome={ok,unknown_date,unknown_table,bad_request,unavailable}

	// Refresh metrics.
	Refreshes        *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration  prometheus.Histogram
	RefresherRunning prometheus.Gauge
	SnapshotDays     prometheus.Gauge
	SnapshotRows     *prometheus.GaugeVec // labels: table
	SnapshotLoadedAt prometheus.Gauge

	// Summary publishing metrics.
	SummariesPublished prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Queries,
		m.Refreshes,
		m.RefreshDuration,
		m.RefresherRunning,
		m.SnapshotDays,
		m.SnapshotRows,
		m.SnapshotLoadedAt,
		m.SummariesPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_series",
			Name:      "queries_total",
			Help:      "Series queries by operation and outcome.",
		}, []string{"op", "outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_series",
			Name:      "refreshes_total",
			Help:      "Snapshot refresh attempts by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_series",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete load-build-swap refresh.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_series",
			Name:      "refresher_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		SnapshotDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_series",
			Name:      "snapshot_days",
			Help:      "Number of days in the current snapshot.",
		}),
		SnapshotRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "covid_series",
			Name:      "snapshot_locations",
			Help:      "Number of location rows per table in the current snapshot.",
		}, []string{"table"}),
		SnapshotLoadedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_series",
			Name:      "snapshot_loaded_timestamp_seconds",
			Help:      "Unix time the current snapshot was loaded.",
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_series",
			Name:      "summaries_published_total",
			Help:      "Daily summary messages written to the summary topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_series",
			Name:      "publish_errors_total",
			Help:      "Failed summary publish attempts.",
		}),
	}
}
