// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profilekit",
	Short: "A CLI tool that keeps a GitHub profile README and stats snapshot fresh.",
	Long: `profilekit aggregates a user's statistics across all of their GitHub
repositories (stars, commits, pull requests, issues, language bytes,
contributed-to repositories) and rewrites the marker-delimited sections
of a profile README with the results, persisting the aggregate as a
JSON snapshot alongside it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
