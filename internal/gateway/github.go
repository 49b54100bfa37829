// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/profilekit/profilekit/internal/domain"
)

const (
	// reposPerPage is the fixed page size for the repository list; the list
	// is paged until a page comes back empty.
	reposPerPage = 100
	// commitsPerPage caps the per-repository commit count. Only the first
	// page is fetched, so repositories with more commits are undercounted.
	commitsPerPage = 100
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchUser(ctx context.Context, username string) (*domain.User, error)
	FetchRepositories(ctx context.Context, username string) ([]*domain.Repository, error)
	FetchLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
	FetchCommitCount(ctx context.Context, owner, repo, author string) (int, error)
	FetchPullRequestCount(ctx context.Context, username string) (int, error)
	FetchIssueCount(ctx context.Context, username string) (int, error)
	FetchContributedRepoCount(ctx context.Context, username string) (int, error)
	FetchTotalContributions(ctx context.Context, username string) (int, error)
	// Authenticated reports whether a token was supplied. Callers skip the
	// commit, search, and GraphQL operations entirely when it is false.
	Authenticated() bool
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	authenticated bool
	logger        *log.Logger
}

// contributionsQuery fetches the profile contribution-calendar total for the
// last year. The calendar is only exposed through the GraphQL API.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions githubv4.Int
			}
		}
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields an unauthenticated client; the rate limit waiter is
// installed either way.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Base:   rateLimitWaiter,
				Source: ts,
			},
		}
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		authenticated: token != "",
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) Authenticated() bool {
	return g.authenticated
}

func (g *GitHubGateway) FetchUser(ctx context.Context, username string) (*domain.User, error) {
	user, _, err := g.restClient.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}
	return &domain.User{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		ProfileURL:  user.GetHTMLURL(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
	}, nil
}

// FetchRepositories pages through the user's repository list until a page
// comes back empty, concatenating pages in server-returned order.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, username string) ([]*domain.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: reposPerPage, Page: 1},
	}
	var all []*domain.Repository
	for {
		repos, _, err := g.restClient.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", username, err)
		}
		if len(repos) == 0 {
			break
		}
		for _, repo := range repos {
			all = append(all, &domain.Repository{
				Name:     repo.GetName(),
				Owner:    repo.GetOwner().GetLogin(),
				FullName: repo.GetFullName(),
				Stars:    repo.GetStargazersCount(),
			})
		}
		opts.Page++
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching repository list (%d repositories).\n", len(all))
	return all, nil
}

func (g *GitHubGateway) FetchLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	languages, _, err := g.restClient.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages for %s/%s: %w", owner, repo, err)
	}
	return languages, nil
}

// FetchCommitCount counts commits authored by author in one repository. Only
// the first page of up to 100 commits is consulted; a full page is logged as
// a possible undercount but further pages are not fetched.
func (g *GitHubGateway) FetchCommitCount(ctx context.Context, owner, repo, author string) (int, error) {
	opts := &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: commitsPerPage},
	}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list commits for %s/%s: %w", owner, repo, err)
	}
	if len(commits) == commitsPerPage {
		g.logger.Printf("  %s/%s has %d or more commits by %s; counting the first page only\n", owner, repo, commitsPerPage, author)
	}
	return len(commits), nil
}

func (g *GitHubGateway) FetchPullRequestCount(ctx context.Context, username string) (int, error) {
	return g.searchIssueTotal(ctx, fmt.Sprintf("author:%s type:pr", username))
}

func (g *GitHubGateway) FetchIssueCount(ctx context.Context, username string) (int, error) {
	return g.searchIssueTotal(ctx, fmt.Sprintf("author:%s type:issue", username))
}

func (g *GitHubGateway) searchIssueTotal(ctx context.Context, query string) (int, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Issues(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search issues with query %q: %w", query, err)
	}
	return result.GetTotal(), nil
}

// FetchContributedRepoCount counts repositories the user has committed to but
// does not own.
func (g *GitHubGateway) FetchContributedRepoCount(ctx context.Context, username string) (int, error) {
	query := fmt.Sprintf("contributor:%s -user:%s", username, username)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Repositories(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search repositories with query %q: %w", query, err)
	}
	return result.GetTotal(), nil
}

// FetchTotalContributions fetches the contribution-calendar total for the
// last year using the GraphQL API.
func (g *GitHubGateway) FetchTotalContributions(ctx context.Context, username string) (int, error) {
	variables := map[string]interface{}{"login": githubv4.String(username)}
	var q contributionsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for contributions: %w", err)
	}
	return int(q.User.ContributionsCollection.ContributionCalendar.TotalContributions), nil
}
