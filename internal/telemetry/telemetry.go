package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	RowsParsed    prometheus.Counter
	RowsDropped   prometheus.Counter
	Recomputes    *prometheus.CounterVec
	Records       prometheus.Gauge
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_fetches_total",
			Help:      "CSV export fetches by outcome",
		}, []string{"outcome"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "csv_fetch_duration_seconds",
			Help:      "Time spent fetching the CSV export",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsParsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_parsed_total",
			Help:      "Rows turned into records",
		}),
		RowsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_dropped_total",
			Help:      "Rows skipped because a field did not parse",
		}),
		Recomputes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_recomputes_total",
			Help:      "Derived view rebuilds by memo outcome",
		}, []string{"memo"}),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_records",
			Help:      "Records held by the session",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.Fetches.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
