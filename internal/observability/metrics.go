package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "maplist"

// Metrics holds the Prometheus counters and histograms for parsing and importing lists.
type Metrics struct {
	// Parse metrics.
	ParseRequests      *prometheus.CounterVec // labels: outcome={success,invalid_input,resolution_failed,...}
	LocationsExtracted prometheus.Counter
	FetchDuration      prometheus.Histogram
	ResolverCache      *prometheus.CounterVec // labels: result={hit,miss}
	PagesArchived      *prometheus.CounterVec // labels: outcome={success,error}

	// Import metrics.
	ImportItems    *prometheus.CounterVec // labels: result={imported,duplicate,invalid,failed}
	ImportDuration prometheus.Histogram
	EventsDropped  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ParseRequests,
		m.LocationsExtracted,
		m.FetchDuration,
		m.ResolverCache,
		m.PagesArchived,
		m.ImportItems,
		m.ImportDuration,
		m.EventsDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ParseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_requests_total",
			Help:      "List parse requests by outcome.",
		}, []string{"outcome"}),
		LocationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_extracted_total",
			Help:      "Total locations emitted by the extractor.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of list page fetches, including short link resolution.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		ResolverCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_cache_total",
			Help:      "Short link cache lookups by result.",
		}, []string{"result"}),
		PagesArchived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_archived_total",
			Help:      "Markup snapshots of pages that yielded no data, by outcome.",
		}, []string{"outcome"}),
		ImportItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_items_total",
			Help:      "Import items by result.",
		}, []string{"result"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Duration of a complete bulk import call.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_events_dropped_total",
			Help:      "Imported-location events that could not be published.",
		}),
	}
}
