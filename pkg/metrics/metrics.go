// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linktally_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "status"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktally_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	// Domain metrics
	ShortLinksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linktally_short_links_created_total",
			Help: "Total number of short links created",
		},
	)

	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktally_redirects_total",
			Help: "Total number of redirect lookups by outcome",
		},
		[]string{"outcome"}, // "success", "not_found", "expired" or "error"
	)
)
