package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("helix-top %s (built %s, %s)\n", version, buildTime, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
