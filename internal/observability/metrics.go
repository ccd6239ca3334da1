package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion worker.
type Metrics struct {
	ScansTotal     prometheus.Counter
	ScanDuration   prometheus.Histogram
	ItemsSeen      prometheus.Counter
	EventsInserted prometheus.Counter
	ItemsSkipped   *prometheus.CounterVec // labels: reason={duplicate,not_candidate}
	ItemFailures   prometheus.Counter
	FeedErrors     prometheus.Counter
	ArticleErrors  prometheus.Counter
	NotifyFailures prometheus.Counter
	WorkerRunning  prometheus.Gauge

	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,empty,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all worker metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.ItemsSeen,
		m.EventsInserted,
		m.ItemsSkipped,
		m.ItemFailures,
		m.FeedErrors,
		m.ArticleErrors,
		m.NotifyFailures,
		m.WorkerRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "scans_total",
			Help:      "Completed scan cycles.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skyfall",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a full scan over all feeds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ItemsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "items_seen_total",
			Help:      "Feed items examined across all scans.",
		}),
		EventsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "events_inserted_total",
			Help:      "New events durably stored.",
		}),
		ItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "items_skipped_total",
			Help:      "Items skipped by reason.",
		}, []string{"reason"}),
		ItemFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "item_failures_total",
			Help:      "Items that failed processing and were dropped.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "feed_errors_total",
			Help:      "Feed fetches that failed.",
		}),
		ArticleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "article_errors_total",
			Help:      "Article text fetches that failed.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "notify_failures_total",
			Help:      "Notification sends that failed.",
		}),
		WorkerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyfall",
			Name:      "worker_running",
			Help:      "1 while the scan loop is active.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "geocode_requests_total",
			Help:      "External geocoding calls by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyfall",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
	}
}
