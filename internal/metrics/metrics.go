// Package metrics exposes Prometheus instrumentation for library listings:
// store query latency, listing and shelf outcomes, and HTTP traffic.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/listenupapp/listenup-library/internal/store"
)

var (
	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_store_query_duration_seconds",
			Help:    "Duration of library store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_store_query_errors_total",
			Help: "Total number of library store query errors",
		},
		[]string{"operation", "error_type"},
	)

	// Listing Metrics
	ListingResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_listing_results",
			Help:    "Total matching items per library listing",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"media_type", "filter_group"},
	)

	CollapsedBooks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "library_collapsed_books",
			Help:    "Books hidden behind series representatives per collapsed listing",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
	)

	ShelvesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_shelves_served_total",
			Help: "Total number of non-empty personalized shelves served",
		},
		[]string{"shelf"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordStoreQuery records a store query metric.
func RecordStoreQuery(operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

// errorType buckets errors into a small label set.
func errorType(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrAlreadyExists):
		return "conflict"
	default:
		return "other"
	}
}

// RecordListing records the outcome of a library listing.
func RecordListing(mediaType, filterGroup string, total int) {
	if filterGroup == "" {
		filterGroup = "none"
	}
	ListingResults.WithLabelValues(mediaType, filterGroup).Observe(float64(total))
}

// RecordCollapse records how many books a collapsed listing hid.
func RecordCollapse(excluded int) {
	CollapsedBooks.Observe(float64(excluded))
}

// RecordShelf records a served personalized shelf.
func RecordShelf(id string) {
	ShelvesServed.WithLabelValues(id).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
