package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "reramsim",
	Short: "reramsim simulates a memory with fast and slow regions and " +
		"migrates hot data into the fast regions.",
	Long: `reramsim simulates a memory whose regions have asymmetric access ` +
		`latencies. A per-bank translation table remaps virtual regions onto ` +
		`physical regions, and a migration scheduler moves frequently ` +
		`accessed regions into the fast slots at epoch boundaries.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
