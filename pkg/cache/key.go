package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached Helix response.
type Key struct {
	// Endpoint is the Helix endpoint path (e.g., "streams", "games/top")
	Endpoint string

	// QueryParams are the request's query parameters (e.g., {"first": ["100"]})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: helix:cache:endpoint:param1=val1:param2=val2
//
// Example:
//
//	helix:cache:streams:after=abc:first=100
func (k Key) String() string {
	parts := []string{"helix", "cache"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted by name for determinism. Repeated params
	// (users?login=a&login=b) keep their value order under one name.
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	return strings.Join(parts, ":")
}
