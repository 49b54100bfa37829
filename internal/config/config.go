// Package config loads runtime configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// DefaultReadmePath and DefaultSnapshotPath are relative to the working
// directory, matching the profile repository layout the kit runs in.
const (
	DefaultReadmePath   = "README.md"
	DefaultSnapshotPath = "stats.json"
)

// Config carries everything a run needs. The token is optional: without it
// the commit, PR, issue, and contribution counts are skipped.
type Config struct {
	Username     string
	Token        string
	ReadmePath   string
	SnapshotPath string
}

// Load reads configuration once at startup. A .env file is honored when
// present so local runs see the same variables the workflow exports.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Username:     os.Getenv("GH_USERNAME"),
		Token:        os.Getenv("GITHUB_TOKEN"),
		ReadmePath:   DefaultReadmePath,
		SnapshotPath: DefaultSnapshotPath,
	}
}
