package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var userOutput string

var userCmd = &cobra.Command{
	Use:     "user <login> [login...]",
	Short:   "Look up user profiles by login name",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runUser,
}

func init() {
	userCmd.Flags().StringVarP(&userOutput, "output", "o", "table", "output format (table, json, yaml)")

	rootCmd.AddCommand(userCmd)
}

func runUser(cmd *cobra.Command, args []string) error {
	logger.Debug().Strs("logins", args).Msg("Looking up users")

	users, err := helixClient.GetUsersByLogin(cmd.Context(), args)
	if err != nil {
		return err
	}

	if len(users) < len(args) {
		fmt.Fprintf(os.Stderr, "note: %d of %d logins not found\n", len(args)-len(users), len(args))
	}

	return renderOutput(os.Stdout, userOutput, users)
}
