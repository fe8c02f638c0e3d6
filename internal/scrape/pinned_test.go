package scrape

import (
	"errors"
	"testing"

	"github.com/naka-gawa/github-portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileMarkup = `
<ol class="d-flex flex-wrap list-style-none gutter-condensed mb-2 js-pinned-items-reorder-list">
  <li class="mb-3 d-flex flex-content-stretch col-12 col-md-6 col-lg-6">
    <div class="Box d-flex pinned-item-list-item p-3 width-full public source">
      <div class="pinned-item-list-item-content">
        <div class="d-flex width-full position-relative">
          <span class="position-relative">
            <a href="/exceptioncoding/portfolio" class="Link mr-1 text-bold wb-break-word" data-view-component="true">
              <span class="repo" title="portfolio">portfolio</span>
            </a>
          </span>
        </div>
        <p class="pinned-item-desc color-fg-muted text-small mt-2 mb-0">
          My <g-emoji alias="rocket">&#x1F680;</g-emoji> personal
          site &amp; blog
        </p>
        <p class="mb-0 f6 color-fg-muted">
          <span class="d-inline-block mr-3">
            <span class="repo-language-color" style="background-color: #f1e05a"></span>
            <span itemprop="programmingLanguage">JavaScript</span>
          </span>
        </p>
      </div>
    </div>
  </li>
  <li class="mb-3 d-flex flex-content-stretch col-12 col-md-6 col-lg-6">
    <div class="Box d-flex pinned-item-list-item p-3 width-full public source">
      <div class="pinned-item-list-item-content">
        <a class="Link mr-1 text-bold wb-break-word" href="/exceptioncoding/Tooling">
          <span class="repo" title="Tooling">Tooling</span>
        </a>
      </div>
    </div>
  </li>
</ol>`

func TestExtractPinned(t *testing.T) {
	entries, err := ExtractPinned(profileMarkup)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "portfolio", entries[0].Name)
	assert.Equal(t, "My \U0001F680 personal site & blog", entries[0].Description)
	require.NotNil(t, entries[0].Language)
	assert.Equal(t, "JavaScript", *entries[0].Language)

	// Attribute order on the anchor doesn't matter, description and language are optional.
	assert.Equal(t, "Tooling", entries[1].Name)
	assert.Empty(t, entries[1].Description)
	assert.Nil(t, entries[1].Language)
}

func TestExtractPinned_EdgeCases(t *testing.T) {
	testCases := []struct {
		name          string
		markup        string
		expectedNames []string
		expectError   bool
	}{
		{
			name:        "no containers",
			markup:      `<html><body><div class="profile">nothing pinned</div></body></html>`,
			expectError: true,
		},
		{
			name:        "empty markup",
			markup:      "",
			expectError: true,
		},
		{
			name: "containers without names",
			markup: `<div class="pinned-item-list-item"><a href="/u/x">not bold</a></div>
<div class="pinned-item-list-item"><span>no anchor</span></div>`,
			expectError: true,
		},
		{
			name: "nameless block is skipped",
			markup: `<div class="pinned-item-list-item"><span>no anchor</span></div>
<div class="pinned-item-list-item"><a href="/u/keep" class="text-bold">keep</a></div>`,
			expectedNames: []string{"keep"},
		},
		{
			name: "duplicates are collapsed case-insensitively",
			markup: `<div class="pinned-item-list-item"><a href="/u/Repo" class="text-bold">Repo</a></div>
<div class="pinned-item-list-item"><a href="/u/repo" class="text-bold">repo</a></div>`,
			expectedNames: []string{"Repo"},
		},
		{
			name:          "similar class names do not match",
			markup:        `<div class="pinned-item-list-item-content"><a href="/u/nope" class="text-bold">nope</a></div>`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := ExtractPinned(tc.markup)
			if tc.expectError {
				var scrapeErr *domain.ScrapeError
				assert.True(t, errors.As(err, &scrapeErr))
				assert.Nil(t, entries)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}
