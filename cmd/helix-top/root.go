package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/twitch-helix-client/internal/config"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/logging"
)

var (
	cfgFile  string
	clientID string
	logLevel string
	logFmt   string

	cfg         *config.Config
	logger      zerolog.Logger
	helixClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "helix-top",
	Short: "Top streams, games, and users from the Twitch Helix API",
	Long: `helix-top queries the Twitch Helix API for the most-watched live
streams and game categories, and for user profiles. Results can be
filtered with expressions and printed as a table, JSON, or YAML.

The Twitch application client ID is taken from --client-id, the
TWITCH_CLIENT_ID environment variable, or helix.client_id in the
config file, in that order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Twitch application client ID")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFmt, "log-format", "", "log format (json, console, auto)")
}

// initializeApp loads the configuration, configures logging, and builds
// the Helix client. Attached as PreRunE to every command that talks to
// the API.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags win over config file and environment
	if cmd.Flags().Changed("client-id") {
		cfg.Helix.ClientID = clientID
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = logFmt
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: logging.PrettyFromFormat(cfg.Logging.Format),
	})
	logger = logging.NewLogger("helix-top")

	if cfg.Helix.ClientID == "" {
		return fmt.Errorf("client ID is required (set --client-id, TWITCH_CLIENT_ID, or helix.client_id)")
	}

	helixClient, err = buildClient(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create Helix client: %w", err)
	}

	return nil
}

// buildClient assembles the client options from the configuration.
func buildClient(ctx context.Context, cfg *config.Config) (*client.Client, error) {
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

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		opts = append(opts, client.WithRedis(redisClient))
		if cfg.Cache.Enabled {
			opts = append(opts, client.WithCache(cfg.Cache.TTL))
		}
	}

	return client.New(cfg.Helix.ClientID, opts...)
}
