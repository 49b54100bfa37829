package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profilekit/profilekit/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making
// real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUser(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, username string) ([]*domain.Repository, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repository), args.Error(1)
}

func (m *mockFetcher) FetchLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockFetcher) FetchCommitCount(ctx context.Context, owner, repo, author string) (int, error) {
	args := m.Called(ctx, owner, repo, author)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchPullRequestCount(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchIssueCount(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchContributedRepoCount(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchTotalContributions(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) Authenticated() bool {
	args := m.Called()
	return args.Bool(0)
}

func testUser() *domain.User {
	return &domain.User{
		Login:       "testuser",
		Name:        "Test User",
		AvatarURL:   "https://example.com/a.png",
		ProfileURL:  "https://github.com/testuser",
		PublicRepos: 2,
		Followers:   34,
		Following:   5,
	}
}

func testRepos() []*domain.Repository {
	return []*domain.Repository{
		{Name: "repo-a", Owner: "testuser", FullName: "testuser/repo-a", Stars: 10},
		{Name: "repo-b", Owner: "testuser", FullName: "testuser/repo-b", Stars: 4},
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	t.Run("happy path - folds repositories and account counts into one snapshot", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(true)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(testRepos(), nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-a").Return(map[string]int{"Go": 3000, "Makefile": 500}, nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-b").Return(map[string]int{"Go": 1000, "HTML": 500}, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-a", "testuser").Return(7, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-b", "testuser").Return(5, nil)
		fetcher.On("FetchPullRequestCount", mock.Anything, "testuser").Return(3, nil)
		fetcher.On("FetchIssueCount", mock.Anything, "testuser").Return(2, nil)
		fetcher.On("FetchContributedRepoCount", mock.Anything, "testuser").Return(4, nil)
		fetcher.On("FetchTotalContributions", mock.Anything, "testuser").Return(900, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)

		assert.Equal(t, "testuser", snap.Username)
		assert.Equal(t, "Test User", snap.Name)
		assert.Equal(t, 2, snap.PublicRepos)
		assert.Equal(t, 34, snap.Followers)
		assert.Equal(t, 5, snap.Following)
		assert.Equal(t, 14, snap.TotalStars)
		assert.Equal(t, 12, snap.TotalCommits)
		assert.Equal(t, 3, snap.TotalPRs)
		assert.Equal(t, 2, snap.TotalIssues)
		assert.Equal(t, 4, snap.ContributedTo)
		assert.Equal(t, 900, snap.TotalContributions)
		assert.Equal(t, 7.0, snap.AverageStars)
		assert.Equal(t, 7.0, snap.MedianStars)
		// Byte totals merge across repos; equal totals order by name.
		assert.Equal(t, []domain.LanguageStat{
			{Name: "Go", Bytes: 4000},
			{Name: "HTML", Bytes: 500},
			{Name: "Makefile", Bytes: 500},
		}, snap.Languages)
		assert.False(t, snap.UpdatedAt.IsZero())

		fetcher.AssertExpectations(t)
	})

	t.Run("per-repo language failure is recovered and contributes nothing", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(true)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(testRepos(), nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-a").Return(nil, errors.New("github api error"))
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-b").Return(map[string]int{"HTML": 2048}, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-a", "testuser").Return(7, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-b", "testuser").Return(5, nil)
		fetcher.On("FetchPullRequestCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchIssueCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchContributedRepoCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchTotalContributions", mock.Anything, "testuser").Return(0, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)

		assert.Equal(t, []domain.LanguageStat{{Name: "HTML", Bytes: 2048}}, snap.Languages)
		assert.Equal(t, 12, snap.TotalCommits)
	})

	t.Run("per-repo commit failure is recovered and counts zero", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(true)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(testRepos(), nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", mock.Anything).Return(map[string]int{}, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-a", "testuser").Return(0, errors.New("empty repository"))
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", "repo-b", "testuser").Return(5, nil)
		fetcher.On("FetchPullRequestCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchIssueCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchContributedRepoCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchTotalContributions", mock.Anything, "testuser").Return(0, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)

		assert.Equal(t, 5, snap.TotalCommits)
	})

	t.Run("empty account - zero totals and an empty language list", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(true)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return([]*domain.Repository{}, nil)
		fetcher.On("FetchPullRequestCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchIssueCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchContributedRepoCount", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchTotalContributions", mock.Anything, "testuser").Return(0, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)

		assert.Zero(t, snap.TotalStars)
		assert.Zero(t, snap.TotalCommits)
		assert.Zero(t, snap.AverageStars)
		assert.Zero(t, snap.MedianStars)
		assert.Empty(t, snap.Languages)
	})

	t.Run("display name falls back to the login", func(t *testing.T) {
		user := testUser()
		user.Name = ""
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(false)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(user, nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return([]*domain.Repository{}, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)

		assert.Equal(t, "testuser", snap.Name)
	})
}

// TestAggregator_Aggregate_Unauthenticated checks the degraded mode: all
// token-gated counts stay zero and no token-gated request is issued.
func TestAggregator_Aggregate_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	fetcher := new(mockFetcher)
	fetcher.On("Authenticated").Return(false)
	fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
	fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(testRepos(), nil)
	fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-a").Return(map[string]int{"Go": 3000}, nil)
	fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-b").Return(map[string]int{"Go": 1000}, nil)

	snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
	require.NoError(t, err)

	assert.Equal(t, 14, snap.TotalStars)
	assert.Equal(t, []domain.LanguageStat{{Name: "Go", Bytes: 4000}}, snap.Languages)
	assert.Zero(t, snap.TotalCommits)
	assert.Zero(t, snap.TotalPRs)
	assert.Zero(t, snap.TotalIssues)
	assert.Zero(t, snap.ContributedTo)
	assert.Zero(t, snap.TotalContributions)

	fetcher.AssertNotCalled(t, "FetchCommitCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "FetchPullRequestCount", mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "FetchIssueCount", mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "FetchContributedRepoCount", mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "FetchTotalContributions", mock.Anything, mock.Anything)
}

func TestAggregator_Aggregate_TopLevelFailures(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	t.Run("user fetch failure aborts the run", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(nil, errors.New("github api error"))

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		assert.Error(t, err)
		assert.Nil(t, snap)
	})

	t.Run("repository list failure aborts the run", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(nil, errors.New("github api error"))

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		assert.Error(t, err)
		assert.Nil(t, snap)
	})

	t.Run("search failure aborts the run when a token is present", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(true)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(testRepos(), nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", mock.Anything).Return(map[string]int{}, nil)
		fetcher.On("FetchCommitCount", mock.Anything, "testuser", mock.Anything, "testuser").Return(0, nil)
		fetcher.On("FetchPullRequestCount", mock.Anything, "testuser").Return(0, errors.New("rate limited"))

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		assert.Error(t, err)
		assert.Nil(t, snap)
	})
}

// TestAggregator_Aggregate_OrderIndependence feeds the same repositories in
// two different orders and expects identical language totals, since the byte
// merge is commutative.
func TestAggregator_Aggregate_OrderIndependence(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	aggregate := func(repos []*domain.Repository) *domain.Snapshot {
		fetcher := new(mockFetcher)
		fetcher.On("Authenticated").Return(false)
		fetcher.On("FetchUser", mock.Anything, "testuser").Return(testUser(), nil)
		fetcher.On("FetchRepositories", mock.Anything, "testuser").Return(repos, nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-a").Return(map[string]int{"Go": 3000, "Ruby": 1024}, nil)
		fetcher.On("FetchLanguages", mock.Anything, "testuser", "repo-b").Return(map[string]int{"Go": 1000, "Perl": 1024}, nil)

		snap, err := NewAggregator(fetcher, logger).Aggregate(ctx, "testuser")
		require.NoError(t, err)
		return snap
	}

	repos := testRepos()
	reversed := []*domain.Repository{repos[1], repos[0]}

	first := aggregate(repos)
	second := aggregate(reversed)

	expected := []domain.LanguageStat{
		{Name: "Go", Bytes: 4000},
		{Name: "Perl", Bytes: 1024},
		{Name: "Ruby", Bytes: 1024},
	}
	assert.Equal(t, expected, first.Languages)
	assert.Equal(t, expected, second.Languages)
	assert.Equal(t, first.TotalStars, second.TotalStars)
}
