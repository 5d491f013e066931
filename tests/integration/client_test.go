package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/twitch-helix-client/internal/testutil"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
	"github.com/Sternrassler/twitch-helix-client/pkg/ratelimit"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(context.Background())
	})

	return redisClient
}

func newClient(t *testing.T, mock *testutil.MockHelix, opts ...client.Option) *client.Client {
	t.Helper()

	opts = append([]client.Option{client.WithBaseURL(mock.URL())}, opts...)
	c, err := client.New("integration-test-client-id", opts...)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullRequestFlow walks the complete stack: rate limit gate, cache
// lookup, mock Helix round trip, cache store, and the cached replay.
func TestFullRequestFlow(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockHelix()
	defer mock.Close()

	mock.SetHandler("/streams", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("",
			testutil.StreamItem(1), testutil.StreamItem(2), testutil.StreamItem(3)),
	}))

	c := newClient(t, mock,
		client.WithRedis(redisClient),
		client.WithCache(5*time.Minute),
	)

	ctx := context.Background()

	t.Log("Request 1: full flow - cache miss")
	streams, err := c.GetStreams(ctx, 3)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if len(streams) != 3 {
		t.Fatalf("len(streams) = %d, want 3", len(streams))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("After request 1: upstream requests = %d, want 1", mock.RequestCount())
	}

	// The page response is now in Redis under its endpoint+params key
	keys, err := redisClient.Keys(ctx, "helix:cache:*").Result()
	if err != nil {
		t.Fatalf("Redis KEYS failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Cached keys = %v, want exactly one", keys)
	}

	t.Log("Request 2: served from cache")
	again, err := c.GetStreams(ctx, 3)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("After request 2: upstream requests = %d, want 1 (cache hit)", mock.RequestCount())
	}
	if len(again) != 3 {
		t.Errorf("len(again) = %d, want 3", len(again))
	}
}

// TestPaginationEndToEnd verifies cursor threading against a live HTTP
// server rather than handler-level plumbing.
func TestPaginationEndToEnd(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockHelix()
	defer mock.Close()

	mock.SetHandler("/games/top", testutil.ScriptPages(map[string]string{
		"":    testutil.Envelope("abc", `{"id":"1","name":"One"}`, `{"id":"2","name":"Two"}`),
		"abc": testutil.Envelope("def", `{"id":"3","name":"Three"}`),
	}))

	c := newClient(t, mock, client.WithRedis(redisClient))

	games, err := client.CollectPages[models.Game](context.Background(), c,
		http.MethodGet, "games/top", nil, 2, 3)
	if err != nil {
		t.Fatalf("CollectPages failed: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("len(games) = %d, want 3", len(games))
	}
	if games[0].Name != "One" || games[2].Name != "Three" {
		t.Errorf("games = [%s .. %s], want [One .. Three]", games[0].Name, games[2].Name)
	}

	requests := mock.Requests()
	if len(requests) != 2 {
		t.Fatalf("Requests = %d, want 2", len(requests))
	}
	if got := requests[0].Query.Get("first"); got != "2" {
		t.Errorf("request 1: first = %q, want %q", got, "2")
	}
	if got := requests[1].Query.Get("after"); got != "abc" {
		t.Errorf("request 2: after = %q, want %q", got, "abc")
	}
	if got := requests[1].Query.Get("first"); got != "1" {
		t.Errorf("request 2: first = %q, want %q", got, "1")
	}
}

// TestExhaustedPartialResults verifies the early-exhaustion contract
// through the public API: partial items plus a matchable sentinel.
func TestExhaustedPartialResults(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockHelix()
	defer mock.Close()

	// Only two streams are live; the caller asks for five.
	mock.SetHandler("/streams", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("", testutil.StreamItem(1), testutil.StreamItem(2)),
	}))

	c := newClient(t, mock, client.WithRedis(redisClient))

	streams, err := c.GetStreams(context.Background(), 5)

	if !errors.Is(err, client.ErrExhausted) {
		t.Fatalf("Error = %v, want ErrExhausted", err)
	}
	if len(streams) != 2 {
		t.Errorf("len(streams) = %d, want 2 (partial results)", len(streams))
	}
}

// TestRateLimitBlock verifies that a critically depleted shared bucket
// stops requests before they reach the upstream.
func TestRateLimitBlock(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockHelix()
	defer mock.Close()

	ctx := context.Background()

	// Pre-seed Redis with a critical bucket that has not reset yet
	now := time.Now()
	redisClient.Set(ctx, ratelimit.RedisKeyPointsRemaining, 3, 0)
	redisClient.Set(ctx, ratelimit.RedisKeyLimit, 800, 0)
	redisClient.Set(ctx, ratelimit.RedisKeyResetTimestamp, now.Add(time.Minute).Unix(), 0)
	redisClient.Set(ctx, ratelimit.RedisKeyLastUpdate, now.Format(time.RFC3339Nano), 0)

	c := newClient(t, mock, client.WithRedis(redisClient))

	_, err := c.GetStreams(ctx, 1)
	if err == nil {
		t.Fatal("Expected request to be blocked by rate limiter")
	}
	if !client.IsKind(err, client.KindRateLimited) {
		t.Errorf("Error = %v, want kind %q", err, client.KindRateLimited)
	}

	if mock.RequestCount() != 0 {
		t.Errorf("Upstream requests = %d, want 0 (blocked)", mock.RequestCount())
	}
}

// TestSharedStateAcrossClients verifies that two client instances sharing
// one Redis see the same bucket: headers observed by the first one gate
// the second.
func TestSharedStateAcrossClients(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockHelix()
	defer mock.Close()

	// First response reports a critically depleted bucket
	mock.SetResponse("/streams", testutil.NewRateLimitResponse())

	c1 := newClient(t, mock, client.WithRedis(redisClient))
	c2 := newClient(t, mock, client.WithRedis(redisClient))

	ctx := context.Background()

	// c1 gets the 429 and records zero remaining points in Redis
	_, err := c1.GetStreams(ctx, 1)
	if !client.IsKind(err, client.KindUnsuccessfulStatus) {
		t.Fatalf("Error = %v, want kind %q", err, client.KindUnsuccessfulStatus)
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("Upstream requests = %d, want 1", mock.RequestCount())
	}

	// c2 never sends its request: the shared state blocks it locally
	_, err = c2.GetStreams(ctx, 1)
	if !client.IsKind(err, client.KindRateLimited) {
		t.Fatalf("Error = %v, want kind %q", err, client.KindRateLimited)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("Upstream requests = %d, want 1 (second client blocked)", mock.RequestCount())
	}
}
