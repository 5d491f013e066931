package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/twitch-helix-client/pkg/client"
)

var (
	gameCount  int
	gameOutput string
)

var gamesCmd = &cobra.Command{
	Use:     "games",
	Short:   "List the most-watched game categories",
	PreRunE: initializeApp,
	RunE:    runGames,
}

func init() {
	gamesCmd.Flags().IntVarP(&gameCount, "count", "n", 10, "number of games to fetch")
	gamesCmd.Flags().StringVarP(&gameOutput, "output", "o", "table", "output format (table, json, yaml)")

	rootCmd.AddCommand(gamesCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	logger.Debug().Int("count", gameCount).Msg("Fetching top games")

	games, err := helixClient.GetTopGames(cmd.Context(), gameCount)
	if err != nil {
		if !errors.Is(err, client.ErrExhausted) {
			return err
		}
		logger.Warn().
			Int("requested", gameCount).
			Int("received", len(games)).
			Msg("Fewer games than requested")
	}

	return renderOutput(os.Stdout, gameOutput, games)
}
