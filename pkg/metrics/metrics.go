// Package metrics provides the centralized Prometheus metrics registry for the
// Helix client. All metrics are defined in their respective packages (client,
// cache, ratelimit) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Helix client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - helix_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - helix_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - helix_errors_total{kind} (Counter): Errors by kind (invalid_method, request_failed, ...)
//   - helix_pages_fetched_total{endpoint} (Counter): Pages fetched by aggregations
//
// Rate Limit Metrics (pkg/ratelimit):
//   - helix_points_remaining (Gauge): Points remaining in the Helix rate limit bucket
//   - helix_rate_limit_blocks_total (Counter): Requests blocked at the critical threshold
//   - helix_rate_limit_warnings_total (Counter): Requests allowed inside the warning band
//
// Cache Metrics (pkg/cache):
//   - helix_cache_hits_total (Counter): Cache hits
//   - helix_cache_misses_total (Counter): Cache misses
//   - helix_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(helix_cache_hits_total[5m])) /
//   (sum(rate(helix_cache_hits_total[5m])) + sum(rate(helix_cache_misses_total[5m])))
//
//   # Bucket Running Low
//   helix_points_remaining < 60
//
//   # Request Error Rate
//   rate(helix_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(helix_request_duration_seconds_bucket[5m]))
