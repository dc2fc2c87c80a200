// Package metrics defines all Prometheus metrics for the fan score service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result cache metrics
var (
	// CacheHits counts result cache hits on the check path.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total result cache hits",
		},
	)

	// CacheMisses counts result cache misses on the check path.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total result cache misses",
		},
	)

	// CacheEvictions counts entries removed by the periodic eviction timer.
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_evictions_total",
			Help: "Total expired result cache entries evicted",
		},
	)

	// CacheSize tracks the current number of result cache entries.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_cache_size",
			Help: "Current number of result cache entries",
		},
	)
)

// Leaderboard page cache metrics
var (
	// LeaderboardCacheHits counts Redis leaderboard page cache hits.
	LeaderboardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_hits_total",
			Help: "Total Redis leaderboard page cache hits",
		},
	)

	// LeaderboardCacheMisses counts Redis leaderboard page cache misses.
	LeaderboardCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_misses_total",
			Help: "Total Redis leaderboard page cache misses",
		},
	)
)

// Rate limiting metrics
var (
	// RateLimitRejections counts rejected admissions by scope (caller/api).
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total rate limiter rejections by scope",
		},
		[]string{"scope"},
	)
)

// External API metrics
var (
	// TwitterRequestsTotal counts twitter241 API calls by endpoint and status.
	TwitterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_api_requests_total",
			Help: "Total twitter241 API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// TwitterRequestDuration tracks twitter241 request latency in seconds.
	TwitterRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitter_api_request_duration_seconds",
			Help:    "twitter241 API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState tracks the twitter client breaker state
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitter_circuit_breaker_state",
			Help: "Current twitter client circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Database metrics
var (
	// DBQueryDuration tracks query latency in seconds by query kind.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal counts failed queries by query kind.
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query kind",
		},
		[]string{"query"},
	)
)

// Check flow metrics
var (
	// ChecksTotal counts score checks by outcome (fresh/cached/from_db/stale/degraded).
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_checks_total",
			Help: "Total score checks by outcome",
		},
		[]string{"outcome"},
	)

	// CheckDuration tracks end-to-end check latency in seconds.
	CheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "score_check_duration_seconds",
			Help:    "Score check duration in seconds",
			Buckets: []float64{.005, .025, .1, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// DedupedFetches counts fetches that were coalesced onto an in-flight call.
	DedupedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deduped_fetches_total",
			Help: "Total tweet fetches coalesced onto an already in-flight call",
		},
	)

	// LeaderboardVersion mirrors the process-wide leaderboard version counter.
	LeaderboardVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_version",
			Help: "Current leaderboard version counter",
		},
	)
)
