package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the analysis pipeline.
type Metrics struct {
	RecordsFetched   prometheus.Counter
	StationsLocated  prometheus.Counter
	StationsSkipped  prometheus.Counter
	RunsTotal        *prometheus.CounterVec // labels: outcome={success,fetch_error,no_data,load_error}
	LoadErrors       *prometheus.CounterVec // labels: loader
	StationsLoaded   *prometheus.CounterVec // labels: loader
	LastRunTimestamp prometheus.Gauge

	// Upstream request metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error}
	UpstreamDuration prometheus.Histogram

	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "records_fetched_total",
			Help:      "Total raw station records received from the upstream API.",
		}),
		StationsLocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "stations_located_total",
			Help:      "Total stations with a computed distance from the reference point.",
		}),
		StationsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "stations_skipped_total",
			Help:      "Total normalized stations excluded from spatial output.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"outcome"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "load_errors_total",
			Help:      "Output loader failures by loader.",
		}, []string{"loader"}),
		StationsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "stations_loaded_total",
			Help:      "Stations written by each output loader.",
		}, []string{"loader"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aqi_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful analysis.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_etl",
			Name:      "upstream_requests_total",
			Help:      "MOENV API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aqi_etl",
			Name:      "upstream_request_duration_seconds",
			Help:      "MOENV API request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aqi_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-analyze-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.StationsLocated,
		m.StationsSkipped,
		m.RunsTotal,
		m.LoadErrors,
		m.StationsLoaded,
		m.LastRunTimestamp,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "records_fetched_total"}),
		StationsLocated:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "stations_located_total"}),
		StationsSkipped:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "stations_skipped_total"}),
		RunsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "runs_total"}, []string{"outcome"}),
		LoadErrors:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "load_errors_total"}, []string{"loader"}),
		StationsLoaded:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "stations_loaded_total"}, []string{"loader"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "aqi_etl", Name: "last_success_timestamp_seconds"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aqi_etl", Name: "upstream_requests_total"}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "aqi_etl", Name: "upstream_request_duration_seconds"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "aqi_etl", Name: "run_duration_seconds"}),
	}
}
