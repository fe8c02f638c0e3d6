// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// NoDescription is used in place of an empty repository description.
const NoDescription = "No description available"

// MaxTopics is the number of topic labels kept per repository.
const MaxTopics = 5

// Profile is the subset of the account's public profile the pipeline reports on.
type Profile struct {
	Login       string
	Name        string
	HTMLURL     string
	PublicRepos int
}

// RawRepository is a single repository record as returned by the listing API.
type RawRepository struct {
	Name        string
	Description *string
	HTMLURL     string
	Homepage    *string
	Language    *string
	Stars       int
	Topics      []string
	UpdatedAt   time.Time
	Fork        bool
	Private     bool
	Visibility  string
}

// IsPublic reports whether the repository is neither private nor has a
// visibility other than "public". An empty visibility is treated as public.
func (r RawRepository) IsPublic() bool {
	if r.Private {
		return false
	}
	return r.Visibility == "" || strings.EqualFold(r.Visibility, "public")
}

// PinnedEntry is what can be recovered about a pinned repository from the
// profile page. Only Name is used for matching.
type PinnedEntry struct {
	Name        string
	Description string
	Language    *string
}

// ProcessedRepository is the public-facing record written to the output document.
// It is the core domain entity of this application.
type ProcessedRepository struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"htmlUrl"`
	Homepage        *string   `json:"homepage"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazersCount"`
	Topics          []string  `json:"topics"`
	UpdatedAt       time.Time `json:"updatedAt"`
	IsPinned        bool      `json:"isPinned"`
}

// Document is the artifact consumed by the front-end.
type Document struct {
	Repositories []ProcessedRepository `json:"repositories"`
}

// NewDocument wraps repos, never leaving the array null in the encoded form.
func NewDocument(repos []ProcessedRepository) *Document {
	if repos == nil {
		repos = []ProcessedRepository{}
	}
	return &Document{Repositories: repos}
}

// Featured returns the pinned repositories in document order.
func (d *Document) Featured() []ProcessedRepository {
	var featured []ProcessedRepository
	for _, r := range d.Repositories {
		if r.IsPinned {
			featured = append(featured, r)
		}
	}
	return featured
}

// PinnedNames builds the case-insensitive lookup set for pinned entries.
func PinnedNames(pinned []PinnedEntry) map[string]struct{} {
	names := make(map[string]struct{}, len(pinned))
	for _, p := range pinned {
		if p.Name == "" {
			continue
		}
		names[strings.ToLower(p.Name)] = struct{}{}
	}
	return names
}

// DuplicateNames returns the lowercase names that occur more than once in repos,
// in order of their second occurrence.
func DuplicateNames(repos []RawRepository) []string {
	seen := make(map[string]int, len(repos))
	var dups []string
	for _, r := range repos {
		key := strings.ToLower(r.Name)
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}
