// Package gateway provides a gateway to GitHub,
// abstracting away the underlying REST, GraphQL and web page clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-portfolio/internal/config"
	"github.com/naka-gawa/github-portfolio/internal/domain"
)

// pageSize is the per_page value for repository listing. A page shorter than
// this ends pagination.
const pageSize = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchProfile(ctx context.Context, user string) (*domain.Profile, error)
	ListRepositories(ctx context.Context, user string) ([]domain.RawRepository, error)
	// FetchPinned returns the pinned set. Errors are always *domain.ScrapeError.
	FetchPinned(ctx context.Context, user string) ([]domain.PinnedEntry, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client // nil when no token is configured
	webClient     *http.Client
	webBaseURL    string
	userAgent     string
	maxPages      int
	pinnedSource  string
	logger        *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is optional; without it requests are unauthenticated and the
// GraphQL client is not created.
func NewGitHubGateway(cfg *config.Config, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		}
	}
	apiClient := &http.Client{Transport: transport, Timeout: cfg.HTTPTimeout}

	restClient := github.NewClient(apiClient)
	restClient.UserAgent = cfg.UserAgent
	if cfg.APIBaseURL != config.DefaultAPIBaseURL {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.APIBaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.APIBaseURL, err)
		}
		restClient.BaseURL = baseURL
	}

	g := &GitHubGateway{
		restClient:   restClient,
		webClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		webBaseURL:   strings.TrimSuffix(cfg.WebBaseURL, "/"),
		userAgent:    cfg.UserAgent,
		maxPages:     cfg.MaxPages,
		pinnedSource: cfg.PinnedSource,
		logger:       logger,
	}
	if cfg.Token != "" {
		if cfg.APIBaseURL == config.DefaultAPIBaseURL {
			g.graphqlClient = githubv4.NewClient(apiClient)
		} else {
			g.graphqlClient = githubv4.NewEnterpriseClient(strings.TrimSuffix(cfg.APIBaseURL, "/")+"/graphql", apiClient)
		}
	}
	return g, nil
}

// FetchProfile retrieves the account's public profile.
func (g *GitHubGateway) FetchProfile(ctx context.Context, user string) (*domain.Profile, error) {
	g.logger.Debug("Fetching user profile", "user", user)
	u, resp, err := g.restClient.Users.Get(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", upstreamError("GET /users/"+user, resp, err))
	}
	g.logger.Debug("Completed fetching user profile", "user", user)
	return &domain.Profile{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		HTMLURL:     u.GetHTMLURL(),
		PublicRepos: u.GetPublicRepos(),
	}, nil
}

// ListRepositories pages through the account's repositories, most recently
// updated first, until a page comes back shorter than pageSize. Any failed
// page aborts the listing.
func (g *GitHubGateway) ListRepositories(ctx context.Context, user string) ([]domain.RawRepository, error) {
	g.logger.Debug("Fetching public repositories", "user", user)
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	all := make([]domain.RawRepository, 0)
	for page := 1; ; page++ {
		if page > g.maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages of %d", domain.ErrPageLimit, g.maxPages, pageSize)
		}
		opts.Page = page
		repos, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			endpoint := fmt.Sprintf("GET /users/%s/repos?page=%d", user, page)
			return nil, fmt.Errorf("failed to list repositories: %w", upstreamError(endpoint, resp, err))
		}
		for _, r := range repos {
			all = append(all, toRawRepository(r))
		}
		g.logger.Debug("Fetched repository page", "page", page, "count", len(repos))
		if len(repos) < pageSize {
			break
		}
	}
	g.logger.Debug("Completed fetching repositories", "total", len(all))
	return all, nil
}

// upstreamError converts a go-github failure into a *domain.UpstreamError when
// the API answered, and keeps the transport error otherwise.
func upstreamError(endpoint string, resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return &domain.UpstreamError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
}

func toRawRepository(r *github.Repository) domain.RawRepository {
	return domain.RawRepository{
		Name:        r.GetName(),
		Description: nonEmpty(r.Description),
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    nonEmpty(r.Homepage),
		Language:    nonEmpty(r.Language),
		Stars:       r.GetStargazersCount(),
		Topics:      append([]string(nil), r.Topics...),
		UpdatedAt:   r.GetUpdatedAt().Time,
		Fork:        r.GetFork(),
		Private:     r.GetPrivate(),
		Visibility:  r.GetVisibility(),
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
