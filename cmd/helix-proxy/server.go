package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

const (
	// defaultCount is applied when a list endpoint is called without count.
	defaultCount = 20
	// maxCount caps a single proxy call; larger requests are clamped, not
	// rejected, so misconfigured consumers degrade instead of breaking.
	maxCount = 1000
	// maxLogins is the Helix batch ceiling for the users endpoint.
	maxLogins = 100

	readinessTimeout = 2 * time.Second
)

type server struct {
	helix  *client.Client
	redis  *redis.Client // nil when Redis is not configured
	logger zerolog.Logger
}

// listResponse mirrors the upstream envelope shape: items under "data",
// plus an exhausted marker when Helix ran out of results early.
type listResponse struct {
	Data      any  `json:"data"`
	Exhausted bool `json:"exhausted,omitempty"`
}

type errorResponse struct {
	Error          string `json:"error"`
	RequestID      string `json:"request_id,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func newRouter(s *server, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.logger))
	r.Use(chimiddleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(requestTimeout))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/streams", s.handleStreams)
		r.Get("/games/top", s.handleTopGames)
		r.Get("/users", s.handleUsers)
	})

	return r
}

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// requestID tags every request with an ID for log correlation. An ID
// supplied by the caller via X-Request-Id is kept so traces can span hops.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", requestIDFrom(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "OK")
}

// handleReady reports whether the proxy can serve traffic. Without Redis
// there is no dependency to probe and the proxy is always ready.
func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, errorResponse{
				Error:     "redis unavailable: " + err.Error(),
				RequestID: requestIDFrom(r.Context()),
			})
			return
		}
	}
	render.PlainText(w, r, "OK")
}

func (s *server) handleStreams(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}

	var streams []models.Stream
	if gameID := r.URL.Query().Get("game_id"); gameID != "" {
		streams, err = s.helix.GetStreamsByGameID(r.Context(), gameID, count)
	} else {
		streams, err = s.helix.GetStreams(r.Context(), count)
	}
	s.writeList(w, r, streams, err)
}

func (s *server) handleTopGames(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}

	games, err := s.helix.GetTopGames(r.Context(), count)
	s.writeList(w, r, games, err)
}

func (s *server) handleUsers(w http.ResponseWriter, r *http.Request) {
	logins := r.URL.Query()["login"]
	if len(logins) == 0 {
		s.writeBadRequest(w, r, errors.New("login: at least one login parameter is required"))
		return
	}
	if len(logins) > maxLogins {
		s.writeBadRequest(w, r, fmt.Errorf("login: at most %d logins per request (got %d)", maxLogins, len(logins)))
		return
	}

	users, err := s.helix.GetUsersByLogin(r.Context(), logins)
	s.writeList(w, r, users, err)
}

// writeList renders a successful listing. An exhausted aggregation still
// carries every item Helix delivered, so it is a 200 with a marker rather
// than an error.
func (s *server) writeList(w http.ResponseWriter, r *http.Request, items any, err error) {
	exhausted := errors.Is(err, client.ErrExhausted)
	if err != nil && !exhausted {
		s.writeUpstreamError(w, r, err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, listResponse{Data: items, Exhausted: exhausted})
}

func (s *server) writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{
		Error:     err.Error(),
		RequestID: requestIDFrom(r.Context()),
	})
}

func (s *server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: requestIDFrom(r.Context()),
	}

	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case client.KindRateLimited:
			status = http.StatusTooManyRequests
		case client.KindUnsuccessfulStatus:
			resp.UpstreamStatus = apiErr.StatusCode
		}
	} else {
		status = http.StatusInternalServerError
	}

	s.logger.Error().
		Err(err).
		Str("request_id", requestIDFrom(r.Context())).
		Str("path", r.URL.Path).
		Msg("Upstream call failed")

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func parseCount(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return defaultCount, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("count: must be a non-negative integer (got %q)", raw)
	}
	if count > maxCount {
		count = maxCount
	}
	return count, nil
}
