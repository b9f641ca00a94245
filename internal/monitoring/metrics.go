package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "demography"

// Metrics holds the Prometheus counters and histograms for loads and the dashboard.
type Metrics struct {
	YearsLoaded       *prometheus.CounterVec // labels: outcome={complete,failed}
	RowsLoaded        prometheus.Counter
	LoadDuration      prometheus.Histogram
	DashboardRequests *prometheus.CounterVec // labels: route
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.YearsLoaded,
		m.RowsLoaded,
		m.LoadDuration,
		m.DashboardRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		YearsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_loaded_total",
			Help:      "Vintage years processed by the loader, by outcome.",
		}, []string{"outcome"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Observations appended to the demography table.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of one year's extract-normalize-append cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		DashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      "Dashboard HTTP requests by route.",
		}, []string{"route"}),
	}
}
