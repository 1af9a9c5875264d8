package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the harvester.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesFetched     *prometheus.CounterVec
	ReviewsCollected *prometheus.CounterVec
	BlockedPages     prometheus.Counter
	StopsTotal       *prometheus.CounterVec
	NavRetries       prometheus.Counter
	FetchDuration    prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_pages_fetched_total",
			Help: "Total listing pages fetched, by source.",
		},
		[]string{"source"},
	)
	reviews := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_reviews_collected_total",
			Help: "Total in-window reviews accepted, by source.",
		},
		[]string{"source"},
	)
	blocked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_blocked_pages_total",
			Help: "Total pages classified as block/interstitial pages.",
		},
	)
	stops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_stops_total",
			Help: "Total pagination halts, by stop reason.",
		},
		[]string{"reason"},
	)
	navRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_navigation_retries_total",
			Help: "Total relaxed-wait navigation retries after a timeout.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_page_fetch_duration_seconds",
			Help:    "Wall time spent rendering and capturing one listing page.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, reviews, blocked, stops, navRetries, fetchDuration)

	return &Metrics{
		Registry:         registry,
		PagesFetched:     pages,
		ReviewsCollected: reviews,
		BlockedPages:     blocked,
		StopsTotal:       stops,
		NavRetries:       navRetries,
		FetchDuration:    fetchDuration,
	}
}

// IncPage increments the fetched-pages counter for a source.
func (m *Metrics) IncPage(source string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(source).Inc()
}

// IncReview increments the accepted-reviews counter for a source.
func (m *Metrics) IncReview(source string) {
	if m == nil {
		return
	}
	m.ReviewsCollected.WithLabelValues(source).Inc()
}

// IncBlocked increments the blocked-pages counter.
func (m *Metrics) IncBlocked() {
	if m == nil {
		return
	}
	m.BlockedPages.Inc()
}

// IncStop increments the stop counter for a reason label.
func (m *Metrics) IncStop(reason string) {
	if m == nil {
		return
	}
	m.StopsTotal.WithLabelValues(reason).Inc()
}

// ObserveFetch records one page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}
