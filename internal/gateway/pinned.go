package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/github-portfolio/internal/config"
	"github.com/naka-gawa/github-portfolio/internal/domain"
	"github.com/naka-gawa/github-portfolio/internal/scrape"
)

// maxProfileBytes caps how much of the profile page is read.
const maxProfileBytes = 10 << 20

// pinnedItemsQuery reads the pinned set through GraphQL. GitHub allows at most six pins.
type pinnedItemsQuery struct {
	User struct {
		PinnedItems struct {
			Nodes []struct {
				Repository struct {
					Name            string
					Description     string
					PrimaryLanguage *struct {
						Name string
					}
				} `graphql:"... on Repository"`
			}
		} `graphql:"pinnedItems(first: 6, types: REPOSITORY)"`
	} `graphql:"user(login: $login)"`
}

// FetchPinned recovers the pinned set from the configured source.
func (g *GitHubGateway) FetchPinned(ctx context.Context, user string) ([]domain.PinnedEntry, error) {
	if g.pinnedSource == config.PinnedSourceGraphQL {
		if g.graphqlClient != nil {
			return g.fetchPinnedGraphQL(ctx, user)
		}
		g.logger.Warn("GraphQL pinned source requires a token, falling back to scraping")
	}
	return g.scrapePinned(ctx, user)
}

func (g *GitHubGateway) scrapePinned(ctx context.Context, user string) ([]domain.PinnedEntry, error) {
	profileURL := g.webBaseURL + "/" + url.PathEscape(user)
	g.logger.Debug("Scraping pinned repositories", "url", profileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, &domain.ScrapeError{Reason: "creating request", Err: err}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.webClient.Do(req)
	if err != nil {
		return nil, &domain.ScrapeError{Reason: "fetching profile page", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ScrapeError{Reason: fmt.Sprintf("profile page returned %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, &domain.ScrapeError{Reason: "reading profile page", Err: err}
	}

	entries, err := scrape.ExtractPinned(string(body))
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Completed scraping pinned repositories", "count", len(entries))
	return entries, nil
}

func (g *GitHubGateway) fetchPinnedGraphQL(ctx context.Context, user string) ([]domain.PinnedEntry, error) {
	g.logger.Debug("Fetching pinned repositories using GraphQL API", "user", user)
	var q pinnedItemsQuery
	variables := map[string]interface{}{"login": githubv4.String(user)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, &domain.ScrapeError{Reason: "GraphQL pinned items query", Err: err}
	}

	entries := make([]domain.PinnedEntry, 0, len(q.User.PinnedItems.Nodes))
	for _, node := range q.User.PinnedItems.Nodes {
		repo := node.Repository
		if repo.Name == "" {
			continue
		}
		entry := domain.PinnedEntry{Name: repo.Name, Description: repo.Description}
		if repo.PrimaryLanguage != nil && repo.PrimaryLanguage.Name != "" {
			lang := repo.PrimaryLanguage.Name
			entry.Language = &lang
		}
		entries = append(entries, entry)
	}
	g.logger.Debug("Completed fetching pinned repositories", "count", len(entries))
	return entries, nil
}
