// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-portfolio/internal/domain"
	"github.com/naka-gawa/github-portfolio/internal/gateway"
)

// Aggregator is the use case for building the portfolio document.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// Result is the outcome of one aggregation run.
type Result struct {
	Profile  *domain.Profile
	Document *domain.Document
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Aggregate fetches the profile, the repository listing and the pinned set
// concurrently, then ranks the repositories into a Document.
// A failed profile or listing fetch fails the run. A failed pinned fetch only
// clears the pinned distinction.
func (a *Aggregator) Aggregate(ctx context.Context, user string) (*Result, error) {
	a.logger.Info("Fetching data from multiple sources", "user", user)

	var (
		profile *domain.Profile
		repos   []domain.RawRepository
		pinned  []domain.PinnedEntry
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		profile, err = a.fetcher.FetchProfile(egCtx, user)
		return err
	})

	eg.Go(func() error {
		var err error
		repos, err = a.fetcher.ListRepositories(egCtx, user)
		return err
	})

	// The pinned branch never fails the group.
	eg.Go(func() error {
		entries, err := a.fetcher.FetchPinned(egCtx, user)
		if err != nil {
			if !errors.Is(egCtx.Err(), context.Canceled) {
				a.logger.Warn("Continuing without pinned repository data", "err", err)
			}
			return nil
		}
		pinned = entries
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Info("All data fetched successfully",
		"profile", profile.Login, "repositories", len(repos), "pinned", len(pinned))

	for _, name := range domain.DuplicateNames(repos) {
		a.logger.Warn("Repository name is not unique ignoring case; pinned matching may be ambiguous", "name", name)
	}

	doc := domain.NewDocument(Rank(repos, pinned))
	a.logSummary(doc)
	return &Result{Profile: profile, Document: doc}, nil
}

func (a *Aggregator) logSummary(doc *domain.Document) {
	starCounts := make([]int, 0, len(doc.Repositories))
	for _, r := range doc.Repositories {
		starCounts = append(starCounts, r.StargazersCount)
	}
	data := stats.LoadRawData(starCounts)
	// Both return an error only for empty input.
	mean, err := data.Mean()
	if err != nil {
		mean = 0
	}
	median, err := data.Median()
	if err != nil {
		median = 0
	}

	a.logger.Info("Processed repositories",
		"public", len(doc.Repositories),
		"featured", len(doc.Featured()),
		"mean_stars", mean,
		"median_stars", median,
	)
}
