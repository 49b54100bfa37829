// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// User holds the account-level profile fields of the GitHub user being summarized.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	ProfileURL  string `json:"profile_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// Repository holds the per-repository fields the aggregator folds over.
type Repository struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	FullName string `json:"full_name"`
	Stars    int    `json:"stars"`
}

// LanguageStat is one language's cumulative byte count across all repositories.
type LanguageStat struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// Snapshot is the aggregated statistics record produced by one run.
// It is the core domain entity of this application: the snapshot file is
// overwritten with it wholesale and the README sections are rendered from it.
type Snapshot struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	ProfileURL  string `json:"profile_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	TotalStars  int    `json:"total_stars"`
	// TotalCommits sums per-repository authored commits, counting at most
	// 100 per repository: only the first page of results is fetched.
	TotalCommits       int     `json:"total_commits"`
	TotalPRs           int     `json:"total_prs"`
	TotalIssues        int     `json:"total_issues"`
	ContributedTo      int     `json:"contributed_to"`
	TotalContributions int     `json:"total_contributions"`
	AverageStars       float64 `json:"average_stars"`
	MedianStars        float64 `json:"median_stars"`
	// Languages is ordered descending by byte count, names ascending on
	// ties, so the persisted JSON keeps the ranking.
	Languages []LanguageStat `json:"languages"`
	UpdatedAt time.Time      `json:"updated_at"`
}
