package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/twitch-helix-client/internal/testutil"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.MockHelix) {
	t.Helper()

	mock := testutil.NewMockHelix()
	t.Cleanup(mock.Close)

	helix, err := client.New("test-client-id",
		client.WithBaseURL(mock.URL()),
		client.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	srv := &server{
		helix:  helix,
		logger: zerolog.Nop(),
	}
	return newRouter(srv, 10*time.Second), mock
}

func doRequest(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OK")
}

func TestReady_NoRedisConfigured(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, "/ready")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStreams(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetHandler("/streams", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("",
			testutil.StreamItem(1), testutil.StreamItem(2), testutil.StreamItem(3),
			testutil.StreamItem(4), testutil.StreamItem(5)),
	}))

	rec := doRequest(t, router, "/v1/streams?count=5")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data      []models.Stream `json:"data"`
		Exhausted bool            `json:"exhausted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 5)
	assert.False(t, resp.Exhausted)
	assert.Equal(t, "streamer1", resp.Data[0].UserLogin)

	require.Equal(t, 1, mock.RequestCount())
	assert.Equal(t, "5", mock.LastRequest().Query.Get("first"))
}

func TestStreams_GameIDForwarded(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetHandler("/streams", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("", testutil.StreamItem(1)),
	}))

	rec := doRequest(t, router, "/v1/streams?count=1&game_id=509658")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "509658", mock.LastRequest().Query.Get("game_id"))
}

func TestStreams_Exhausted(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetHandler("/streams", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("", testutil.StreamItem(1), testutil.StreamItem(2)),
	}))

	rec := doRequest(t, router, "/v1/streams?count=10")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data      []models.Stream `json:"data"`
		Exhausted bool            `json:"exhausted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.True(t, resp.Exhausted)
}

func TestStreams_InvalidCount(t *testing.T) {
	router, mock := newTestRouter(t)

	rec := doRequest(t, router, "/v1/streams?count=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "count")
	assert.Equal(t, 0, mock.RequestCount())
}

func TestStreams_UpstreamFailure(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetResponse("/streams", testutil.NewServerErrorResponse())

	rec := doRequest(t, router, "/v1/streams?count=1")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, resp.UpstreamStatus)
	assert.NotEmpty(t, resp.RequestID)
}

func TestStreams_UpstreamRateLimited(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetResponse("/streams", testutil.NewRateLimitResponse())

	rec := doRequest(t, router, "/v1/streams?count=1")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestTopGames(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetHandler("/games/top", testutil.ScriptPages(map[string]string{
		"": testutil.Envelope("",
			`{"id":"509658","name":"Just Chatting","box_art_url":"","igdb_id":""}`,
			`{"id":"33214","name":"Fortnite","box_art_url":"","igdb_id":"1905"}`),
	}))

	rec := doRequest(t, router, "/v1/games/top?count=2")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Game `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Just Chatting", resp.Data[0].Name)
}

func TestUsers(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.SetHandler("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testutil.Envelope("",
			`{"id":"141981764","login":"twitchdev","display_name":"TwitchDev",`+
				`"type":"","broadcaster_type":"partner","description":"",`+
				`"profile_image_url":"","offline_image_url":"","created_at":"2016-12-14T20:32:28Z"}`)))
	})

	rec := doRequest(t, router, "/v1/users?login=twitchdev&login=ninja")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "twitchdev", resp.Data[0].Login)

	assert.Equal(t, []string{"twitchdev", "ninja"}, mock.LastRequest().Query["login"])
}

func TestUsers_MissingLogin(t *testing.T) {
	router, mock := newTestRouter(t)

	rec := doRequest(t, router, "/v1/users")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, mock.RequestCount())
}

func TestRequestID_Generated(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, "/health")

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestID_Preserved(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "upstream-trace-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-trace-42", rec.Header().Get("X-Request-Id"))
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"default when absent", "", defaultCount, false},
		{"explicit value", "count=7", 7, false},
		{"zero is allowed", "count=0", 0, false},
		{"clamped to max", "count=5000", maxCount, false},
		{"not a number", "count=abc", 0, true},
		{"negative", "count=-3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/streams?"+tt.query, nil)
			got, err := parseCount(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
