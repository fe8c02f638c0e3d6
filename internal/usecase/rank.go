package usecase

import (
	"sort"
	"strings"

	"github.com/naka-gawa/github-portfolio/internal/domain"
)

// Rank filters, normalizes and orders repositories for publication.
// Forks and non-public repositories are dropped. The order is pinned first,
// then by star count, then by most recent update; the sort is stable so equal
// keys keep their listing order. Rank is a pure function of its inputs.
func Rank(raw []domain.RawRepository, pinned []domain.PinnedEntry) []domain.ProcessedRepository {
	pinnedNames := domain.PinnedNames(pinned)

	processed := make([]domain.ProcessedRepository, 0, len(raw))
	for _, r := range raw {
		if r.Fork || !r.IsPublic() {
			continue
		}
		_, isPinned := pinnedNames[strings.ToLower(r.Name)]
		processed = append(processed, process(r, isPinned))
	}

	sort.SliceStable(processed, func(i, j int) bool {
		a, b := processed[i], processed[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.StargazersCount != b.StargazersCount {
			return a.StargazersCount > b.StargazersCount
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	})
	return processed
}

func process(r domain.RawRepository, isPinned bool) domain.ProcessedRepository {
	description := domain.NoDescription
	if r.Description != nil && *r.Description != "" {
		description = *r.Description
	}

	topics := r.Topics
	if len(topics) > domain.MaxTopics {
		topics = topics[:domain.MaxTopics]
	}

	return domain.ProcessedRepository{
		Name:            r.Name,
		Description:     description,
		HTMLURL:         r.HTMLURL,
		Homepage:        r.Homepage,
		Language:        r.Language,
		StargazersCount: r.Stars,
		Topics:          append(make([]string, 0, len(topics)), topics...),
		UpdatedAt:       r.UpdatedAt,
		IsPinned:        isPinned,
	}
}
