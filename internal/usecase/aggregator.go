// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/profilekit/profilekit/internal/domain"
	"github.com/profilekit/profilekit/internal/gateway"
)

// defaultWorkers bounds the parallel per-repository language and commit
// lookups. Everything else in the pipeline is sequential.
const defaultWorkers = 5

// Aggregator is the use case for aggregating GitHub profile stats.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	workers int
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		workers: defaultWorkers,
	}
}

// repoDetail carries one repository's lookup results, index-aligned with the
// repository list so the fold below runs in server-returned order.
type repoDetail struct {
	languages map[string]int
	commits   int
}

// Aggregate performs the main business logic. The user profile and repository
// list are prerequisites and their failures abort the run; per-repository
// language and commit lookups are best-effort and only logged. The commit,
// search, and contribution counts stay zero without a token, and no request
// is issued for them.
func (a *Aggregator) Aggregate(ctx context.Context, username string) (*domain.Snapshot, error) {
	a.logger.Println("Usecase: Starting stats aggregation...")

	a.logger.Println("[1/4] Fetching user profile...")
	user, err := a.fetcher.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	a.logger.Println("[2/4] Fetching repository list...")
	repos, err := a.fetcher.FetchRepositories(ctx, username)
	if err != nil {
		return nil, err
	}

	a.logger.Printf("[3/4] Fetching languages and commits for %d repositories...\n", len(repos))
	authenticated := a.fetcher.Authenticated()
	details := make([]repoDetail, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.workers)
	for i, repo := range repos {
		eg.Go(func() error {
			languages, err := a.fetcher.FetchLanguages(egCtx, repo.Owner, repo.Name)
			if err != nil {
				a.logger.Printf("  WARN: skipping languages for %s: %v\n", repo.FullName, err)
			} else {
				details[i].languages = languages
			}
			if !authenticated {
				return nil
			}
			count, err := a.fetcher.FetchCommitCount(egCtx, repo.Owner, repo.Name, username)
			if err != nil {
				a.logger.Printf("  WARN: skipping commit count for %s: %v\n", repo.FullName, err)
				return nil
			}
			details[i].commits = count
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Fold the per-repository results. Sums and the byte merge are
	// commutative, so the result does not depend on repository order.
	var totalStars, totalCommits int
	langTotals := make(map[string]int)
	for i, repo := range repos {
		totalStars += repo.Stars
		totalCommits += details[i].commits
		for language, bytes := range details[i].languages {
			langTotals[language] += bytes
		}
	}

	var totalPRs, totalIssues, contributedTo, totalContributions int
	if authenticated {
		a.logger.Println("[4/4] Fetching account-level counts...")
		if totalPRs, err = a.fetcher.FetchPullRequestCount(ctx, username); err != nil {
			return nil, err
		}
		if totalIssues, err = a.fetcher.FetchIssueCount(ctx, username); err != nil {
			return nil, err
		}
		if contributedTo, err = a.fetcher.FetchContributedRepoCount(ctx, username); err != nil {
			return nil, err
		}
		if totalContributions, err = a.fetcher.FetchTotalContributions(ctx, username); err != nil {
			return nil, err
		}
	} else {
		a.logger.Println("[4/4] No token supplied; skipping commit, PR, issue, and contribution counts.")
	}

	averageStars, medianStars, err := starDistribution(repos)
	if err != nil {
		return nil, err
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	snapshot := &domain.Snapshot{
		Username:           user.Login,
		Name:               name,
		AvatarURL:          user.AvatarURL,
		ProfileURL:         user.ProfileURL,
		PublicRepos:        user.PublicRepos,
		Followers:          user.Followers,
		Following:          user.Following,
		TotalStars:         totalStars,
		TotalCommits:       totalCommits,
		TotalPRs:           totalPRs,
		TotalIssues:        totalIssues,
		ContributedTo:      contributedTo,
		TotalContributions: totalContributions,
		AverageStars:       averageStars,
		MedianStars:        medianStars,
		Languages:          sortLanguages(langTotals),
		UpdatedAt:          time.Now().UTC(),
	}

	a.logger.Println("Usecase: Aggregation complete.")
	return snapshot, nil
}

// sortLanguages converts the merged byte totals into a slice sorted
// descending by bytes, with names ascending on equal byte counts so reruns
// over identical data produce identical output.
func sortLanguages(langTotals map[string]int) []domain.LanguageStat {
	languages := make([]domain.LanguageStat, 0, len(langTotals))
	for name, bytes := range langTotals {
		languages = append(languages, domain.LanguageStat{Name: name, Bytes: bytes})
	}
	sort.Slice(languages, func(i, j int) bool {
		if languages[i].Bytes != languages[j].Bytes {
			return languages[i].Bytes > languages[j].Bytes
		}
		return languages[i].Name < languages[j].Name
	})
	return languages
}

// starDistribution summarizes the star counts across the repository list,
// rounded to two decimals. An empty list yields zeros.
func starDistribution(repos []*domain.Repository) (mean, median float64, err error) {
	if len(repos) == 0 {
		return 0, 0, nil
	}
	starCounts := make([]float64, len(repos))
	for i, repo := range repos {
		starCounts[i] = float64(repo.Stars)
	}
	if mean, err = stats.Mean(starCounts); err != nil {
		return 0, 0, fmt.Errorf("failed to compute star mean: %w", err)
	}
	if median, err = stats.Median(starCounts); err != nil {
		return 0, 0, fmt.Errorf("failed to compute star median: %w", err)
	}
	if mean, err = stats.Round(mean, 2); err != nil {
		return 0, 0, fmt.Errorf("failed to round star mean: %w", err)
	}
	if median, err = stats.Round(median, 2); err != nil {
		return 0, 0, fmt.Errorf("failed to round star median: %w", err)
	}
	return mean, median, nil
}
