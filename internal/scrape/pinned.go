// Package scrape recovers the pinned repository set from a rendered GitHub
// profile page. It performs no I/O so the markup conventions it depends on
// can be tested and replaced without touching network code.
package scrape

import (
	"html"
	"regexp"
	"strings"

	"github.com/naka-gawa/github-portfolio/internal/domain"
)

var (
	// pinnedItemStart matches the opening tag of a pinned card container.
	pinnedItemStart = regexp.MustCompile(`<(?:div|li)\b[^>]*\bclass="` + classToken("pinned-item-list-item") + `"[^>]*>`)
	anchorTag       = regexp.MustCompile(`<a\b[^>]*>`)
	repoHref        = regexp.MustCompile(`\bhref="/[^"/]+/([^"/?#]+)"`)
	classAttr       = regexp.MustCompile(`\bclass="([^"]*)"`)
	descParagraph   = regexp.MustCompile(`(?s)<p\b[^>]*\bclass="` + classToken("pinned-item-desc") + `"[^>]*>(.*?)</p>`)
	languageLabel   = regexp.MustCompile(`(?s)<span\b[^>]*\bclass="` + classToken("repo-language-color") + `"[^>]*>\s*</span>\s*<span\b[^>]*>([^<]+)</span>`)
	anyTag          = regexp.MustCompile(`<[^>]*>`)
)

// ExtractPinned returns one entry per pinned card found in markup.
// Cards without a recoverable repository name are skipped. Entries are
// deduplicated by case-insensitive name, keeping the first.
//
// A *domain.ScrapeError is returned when no entry could be recovered.
func ExtractPinned(markup string) ([]domain.PinnedEntry, error) {
	blocks := splitBlocks(markup)
	if len(blocks) == 0 {
		return nil, &domain.ScrapeError{Reason: "no pinned item containers found"}
	}

	seen := make(map[string]bool, len(blocks))
	entries := make([]domain.PinnedEntry, 0, len(blocks))
	for _, block := range blocks {
		entry, ok := parseBlock(block)
		if !ok {
			continue
		}
		key := strings.ToLower(entry.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, &domain.ScrapeError{Reason: "pinned items found but no repository names recovered"}
	}
	return entries, nil
}

// splitBlocks cuts markup into one fragment per pinned container. Each fragment
// runs from its container's opening tag up to the next container (or the end),
// so nested closing tags inside a card don't truncate it.
func splitBlocks(markup string) []string {
	locs := pinnedItemStart.FindAllStringIndex(markup, -1)
	blocks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(markup)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, markup[loc[1]:end])
	}
	return blocks
}

func parseBlock(block string) (domain.PinnedEntry, bool) {
	name := repoName(block)
	if name == "" {
		return domain.PinnedEntry{}, false
	}

	entry := domain.PinnedEntry{Name: name}
	if m := descParagraph.FindStringSubmatch(block); m != nil {
		entry.Description = cleanText(m[1])
	}
	if m := languageLabel.FindStringSubmatch(block); m != nil {
		if lang := cleanText(m[1]); lang != "" {
			entry.Language = &lang
		}
	}
	return entry, true
}

// repoName returns the short name from the first bold "/owner/name" anchor.
func repoName(block string) string {
	for _, tag := range anchorTag.FindAllString(block, -1) {
		class := classAttr.FindStringSubmatch(tag)
		if class == nil || !hasClass(class[1], "text-bold") {
			continue
		}
		if m := repoHref.FindStringSubmatch(tag); m != nil {
			return html.UnescapeString(m[1])
		}
	}
	return ""
}

// classToken matches a class attribute value containing name as a whole,
// whitespace-separated token.
func classToken(name string) string {
	return `(?:[^"]*\s)?` + regexp.QuoteMeta(name) + `(?:\s[^"]*)?`
}

func hasClass(list, want string) bool {
	for _, c := range strings.Fields(list) {
		if c == want {
			return true
		}
	}
	return false
}

// cleanText strips nested tags, decodes entities and collapses whitespace.
func cleanText(fragment string) string {
	text := anyTag.ReplaceAllString(fragment, "")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
