// Package metrics provides Prometheus metrics for the card price lens service.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlens_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// OCR Metrics
	OCRRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_ocr_requests_total",
			Help: "Total number of text recognition requests",
		},
		[]string{"engine", "result"}, // result: "success", "failed" (no text), "error"
	)

	OCRProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlens_ocr_processing_duration_seconds",
			Help:    "Time taken to recognize text in a card image",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)

	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_catalog_requests_total",
			Help: "Total Pokemon TCG catalog searches",
		},
		[]string{"result"}, // "success", "empty", "error"
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlens_catalog_request_duration_seconds",
			Help:    "Pokemon TCG catalog search latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlens_match_score",
			Help:    "Score of the winning catalog candidate",
			Buckets: []float64{0, 50, 100, 200, 400, 500, 1000, 1050},
		},
	)

	// Pricing Metrics
	FallbackPriceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_fallback_price_requests_total",
			Help: "eBay average price lookups",
		},
		[]string{"result"}, // "success", "empty", "error"
	)

	PriceSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_price_source_total",
			Help: "Quoted prices by source",
		},
		[]string{"source"}, // "TCGPlayer", "eBay", "Estimated"
	)

	// Analysis Metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_analyses_total",
			Help: "Completed card analyses by fallback used",
		},
		[]string{"fallback"}, // "none", "popular", "demo"
	)
)
