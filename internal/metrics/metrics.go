package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortlinks_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	// Domain metrics
	LinksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_links_created_total",
			Help: "Total number of links created",
		},
	)

	RedirectsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_redirects_served_total",
			Help: "Total number of successful redirect resolutions",
		},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_cache_hits_total",
			Help: "Total number of resolve cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_cache_misses_total",
			Help: "Total number of resolve cache misses",
		},
	)
)
