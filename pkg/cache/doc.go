// Package cache provides Helix response caching with a Redis backend.
//
// Helix responses carry no cache validators (no ETag, no expires header),
// so the cache works with a single client-chosen TTL per entry:
//
// - Deterministic cache key generation from endpoint + query parameters
// - Fixed TTL enforced both by Redis expiry and a staleness check on read
// - Only successful GET responses are stored
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Endpoint:    "streams",
//		QueryParams: url.Values{"first": []string{"100"}},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the API
//	}
//
//	// Store a fresh response for five minutes
//	entry = cache.NewEntry(body, resp.StatusCode, resp.Header, 5*time.Minute)
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - helix_cache_hits_total - Cache hits
//   - helix_cache_misses_total - Cache misses
//   - helix_cache_errors_total{operation} - Cache operation errors
package cache
