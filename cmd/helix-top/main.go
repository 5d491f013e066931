// helix-top lists the most-watched streams, games, and user profiles on
// Twitch, straight from the command line.
package main

import (
	"fmt"
	"os"
)

// Build metadata, set via -ldflags at release time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
