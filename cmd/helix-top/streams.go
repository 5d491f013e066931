package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/twitch-helix-client/internal/streamfilter"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

var (
	streamCount  int
	streamGameID string
	filterExpr   string
	resolveGames bool
	outputFormat string
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List the most-watched live streams",
	Long: `List the top live streams by viewer count, optionally narrowed to one
game category or filtered with an expression over the stream fields:

  helix-top streams --count 25 --filter 'viewer_count > 1000 && language == "en"'
  helix-top streams --game-id 509658 --filter 'hasTag("Speedrun")'`,
	PreRunE: initializeApp,
	RunE:    runStreams,
}

func init() {
	streamsCmd.Flags().IntVarP(&streamCount, "count", "n", 3, "number of streams to fetch")
	streamsCmd.Flags().StringVar(&streamGameID, "game-id", "", "only streams in this game category")
	streamsCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression over stream fields")
	streamsCmd.Flags().BoolVar(&resolveGames, "resolve-games", false, "look up missing game names")
	streamsCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")

	rootCmd.AddCommand(streamsCmd)
}

func runStreams(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var filter *streamfilter.Filter
	if filterExpr != "" {
		var err error
		filter, err = streamfilter.Compile(filterExpr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	logger.Debug().
		Int("count", streamCount).
		Str("game_id", streamGameID).
		Msg("Fetching top streams")

	var (
		streams []models.Stream
		err     error
	)
	if streamGameID != "" {
		streams, err = helixClient.GetStreamsByGameID(ctx, streamGameID, streamCount)
	} else {
		streams, err = helixClient.GetStreams(ctx, streamCount)
	}
	if err != nil {
		// Fewer live streams than asked for is worth a warning, not a
		// failure; print what came back.
		if !errors.Is(err, client.ErrExhausted) {
			return err
		}
		logger.Warn().
			Int("requested", streamCount).
			Int("received", len(streams)).
			Msg("Fewer live streams than requested")
	}

	if filter != nil {
		streams, err = filter.Apply(streams)
		if err != nil {
			return err
		}
	}

	if resolveGames {
		if err := resolveGameNames(ctx, helixClient, streams); err != nil {
			return fmt.Errorf("failed to resolve game names: %w", err)
		}
	}

	return renderOutput(os.Stdout, outputFormat, streams)
}
