// helix-proxy exposes the Helix client over a small REST surface so that
// co-located services share one rate limit bucket and response cache.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/twitch-helix-client/internal/config"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default is ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "helix-proxy: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: logging.PrettyFromFormat(cfg.Logging.Format),
	})
	logger := logging.NewLogger("helix-proxy")

	if cfg.Helix.ClientID == "" {
		logger.Fatal().Msg("Client ID is required (set TWITCH_CLIENT_ID or helix.client_id)")
	}

	var opts []client.Option
	if cfg.Helix.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(cfg.Helix.BaseURL))
	}
	if cfg.Helix.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(cfg.Helix.UserAgent))
	}
	if cfg.Helix.BearerToken != "" {
		opts = append(opts, client.WithBearerToken(cfg.Helix.BearerToken))
	}

	// Redis is what makes a shared proxy worthwhile; without it every
	// consumer gets plain pass-through aggregation.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

		opts = append(opts, client.WithRedis(redisClient))
		if cfg.Cache.Enabled {
			opts = append(opts, client.WithCache(cfg.Cache.TTL))
			logger.Info().Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
		}
	}

	helixClient, err := client.New(cfg.Helix.ClientID, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Helix client")
	}

	srv := &server{
		helix:  helixClient,
		redis:  redisClient,
		logger: logger,
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(srv, cfg.Server.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting helix-proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
