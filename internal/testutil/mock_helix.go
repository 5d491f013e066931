// Package testutil provides testing utilities for the Helix client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RecordedRequest captures one request the mock server received. Query is
// decoded so tests can assert on the exact first/after pairs of a
// pagination walk.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

// MockHelixResponse defines the behavior for a mock endpoint response.
type MockHelixResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockHelix is a configurable mock Helix API server for testing.
type MockHelix struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	requests []RecordedRequest
}

// NewMockHelix creates a new mock Helix server.
func NewMockHelix() *MockHelix {
	mock := &MockHelix{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		// Default handler
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockHelix) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHelix) Close() {
	m.server.Close()
}

// Reset clears all recorded requests.
func (m *MockHelix) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockHelix) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockHelix) SetResponse(path string, resp MockHelixResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		// Set headers
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		// Write status and body
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns a copy of all recorded requests in arrival order.
func (m *MockHelix) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests the server received.
func (m *MockHelix) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil if none arrived.
func (m *MockHelix) LastRequest() *RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	last := m.requests[len(m.requests)-1]
	return &last
}

// defaultHandler answers unscripted paths with an empty envelope.
func (m *MockHelix) defaultHandler(w http.ResponseWriter, r *http.Request) {
	writeRateLimitHeaders(w, 799)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data":[],"pagination":{}}`))
}

// writeRateLimitHeaders sets the Helix token bucket headers.
func writeRateLimitHeaders(w http.ResponseWriter, remaining int) {
	w.Header().Set("Ratelimit-Limit", "800")
	w.Header().Set("Ratelimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("Ratelimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

// Envelope builds a response body from raw item JSON fragments and a
// cursor. An empty cursor produces an empty pagination block, matching
// what Helix sends on the final page.
func Envelope(cursor string, items ...string) string {
	data := "[" + strings.Join(items, ",") + "]"
	if cursor == "" {
		return fmt.Sprintf(`{"data":%s,"pagination":{}}`, data)
	}
	return fmt.Sprintf(`{"data":%s,"pagination":{"cursor":%q}}`, data, cursor)
}

// ScriptPages returns a handler that serves envelope bodies keyed by the
// request's after parameter, so a pagination walk is scripted as
// {"" : page1, "cursor1": page2, ...}. Requests with an unknown after
// value get a 404.
func ScriptPages(pages map[string]string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("after")]
		writeRateLimitHeaders(w, 799)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Not Found","status":404,"message":"unknown cursor"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

// StreamItem returns a realistic stream object for envelope bodies. The
// id doubles as a marker for ordering assertions.
func StreamItem(id int) string {
	return fmt.Sprintf(`{"id":"%d","user_id":"1%04d","user_login":"streamer%d","user_name":"Streamer%d",`+
		`"game_id":"509658","game_name":"Just Chatting","type":"live","title":"Stream %d",`+
		`"viewer_count":%d,"started_at":"2026-01-15T10:00:00Z","language":"en",`+
		`"thumbnail_url":"https://static-cdn.example/previews/%d-{width}x{height}.jpg",`+
		`"tags":["English"],"is_mature":false}`, id, id, id, id, id, 10000-id, id)
}

// NewHealthyResponse creates a 200 OK response with Helix headers.
func NewHealthyResponse(body string) MockHelixResponse {
	return MockHelixResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    defaultHeaders(799),
	}
}

// NewUnauthorizedResponse creates a 401 Unauthorized response.
func NewUnauthorizedResponse() MockHelixResponse {
	return MockHelixResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"error":"Unauthorized","status":401,"message":"Invalid OAuth token"}`,
		Headers:    defaultHeaders(799),
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with a
// depleted token bucket.
func NewRateLimitResponse() MockHelixResponse {
	return MockHelixResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"Too Many Requests","status":429,"message":"rate limit exceeded"}`,
		Headers:    defaultHeaders(0),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockHelixResponse {
	return MockHelixResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal Server Error","status":500,"message":""}`,
		Headers:    defaultHeaders(799),
	}
}

func defaultHeaders(remaining int) map[string]string {
	return map[string]string{
		"Ratelimit-Limit":     "800",
		"Ratelimit-Remaining": strconv.Itoa(remaining),
		"Ratelimit-Reset":     strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10),
		"Content-Type":        "application/json; charset=utf-8",
	}
}
