// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregates GitHub profile stats and outputs as JSON",
	Long: `Aggregates statistics for the target GitHub user and prints the resulting
snapshot in JSON format to standard output. No file is touched; use the
update command to rewrite the README and snapshot files.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, logger := loadRunConfig(cmd)

		snap, err := runAggregation(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate stats: %v\n", err)
			os.Exit(1)
		}

		// Marshal the snapshot into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal snapshot to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("user", "u", "", "Target GitHub user name (defaults to GH_USERNAME)")
}
