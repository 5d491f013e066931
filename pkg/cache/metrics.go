package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses served from Redis
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helix_cache_hits_total",
			Help: "Total number of Helix cache hits",
		},
	)

	// CacheMisses tracks lookups that fell through to the API
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helix_cache_misses_total",
			Help: "Total number of Helix cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helix_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
