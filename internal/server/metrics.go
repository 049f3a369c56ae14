package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "motoscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	analysisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoscan_analyses_total",
			Help: "Total number of engraving analyses",
		},
		[]string{"status"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "motoscan_analysis_duration_seconds",
			Help:    "Engraving analysis duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoscan_verdicts_total",
			Help: "Analyses by final verdict",
		},
		[]string{"verdict"},
	)

	secondaryInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motoscan_secondary_recognizer_invocations_total",
			Help: "Secondary recognizer invocations by outcome",
		},
		[]string{"outcome"}, // ok, degraded
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "motoscan_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 20 * 1024 * 1024},
		},
	)
)
