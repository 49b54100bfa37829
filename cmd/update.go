// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/domain"
	"github.com/profilekit/profilekit/internal/gateway"
	"github.com/profilekit/profilekit/internal/readme"
	"github.com/profilekit/profilekit/internal/snapshot"
	"github.com/profilekit/profilekit/internal/usecase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Aggregates GitHub stats and rewrites the README and snapshot files",
	Long: `Aggregates statistics across all of the target user's repositories, writes
the result to the snapshot file, and regenerates the marker-delimited
sections of the README. Without a GITHUB_TOKEN the commit, PR, issue, and
contribution counts are skipped; everything else still runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, logger := loadRunConfig(cmd)
		if cfg.Token == "" {
			logger.Println("GITHUB_TOKEN is not set; commit, PR, issue, and contribution counts will be skipped.")
		}

		snap, err := runAggregation(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate stats: %v\n", err)
			os.Exit(1)
		}

		if err := snapshot.Write(cfg.SnapshotPath, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := readme.NewUpdater(logger).Update(cfg.ReadmePath, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update README: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Updated %s and %s for %s.\n", cfg.ReadmePath, cfg.SnapshotPath, snap.Username)
	},
}

// loadRunConfig resolves configuration for a command: environment first,
// then flag overrides. A missing username is fatal; the token stays
// environment-only so it never lands on a command line.
func loadRunConfig(cmd *cobra.Command) (*config.Config, *log.Logger) {
	// Get the verbose flag from the root command to set up the logger.
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}

	cfg := config.Load()
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.Username = user
	}
	if readmePath, _ := cmd.Flags().GetString("readme"); readmePath != "" {
		cfg.ReadmePath = readmePath
	}
	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		cfg.SnapshotPath = outPath
	}
	if cfg.Username == "" {
		fmt.Fprintln(os.Stderr, "Error: set GH_USERNAME or pass --user.")
		os.Exit(1)
	}
	return cfg, logger
}

// runAggregation wires the gateway into the aggregator and runs it.
func runAggregation(ctx context.Context, cfg *config.Config, logger *log.Logger) (*domain.Snapshot, error) {
	githubGateway, err := gateway.NewGitHubGateway(cfg.Token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	aggregator := usecase.NewAggregator(githubGateway, logger)
	return aggregator.Aggregate(ctx, cfg.Username)
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("user", "u", "", "Target GitHub user name (defaults to GH_USERNAME)")
	updateCmd.Flags().String("readme", "", "Path to the README file (defaults to "+config.DefaultReadmePath+")")
	updateCmd.Flags().String("out", "", "Path to the snapshot file (defaults to "+config.DefaultSnapshotPath+")")
}
