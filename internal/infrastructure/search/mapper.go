package search

import (
	"strings"

	"github.com/pennywise/backend/internal/domain"
)

// mapExaResults converts Exa results to domain search results.
// Snippet comes from the highlights, falling back to the summary.
func mapExaResults(results []exaResult) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}

		snippet := strings.TrimSpace(strings.Join(r.Highlights, " "))
		if snippet == "" {
			snippet = strings.TrimSpace(r.Summary)
		}

		out = append(out, domain.SearchResult{
			Title:       strings.TrimSpace(r.Title),
			Snippet:     collapseSpaces(snippet),
			Description: collapseSpaces(r.Text),
			URL:         r.URL,
		})
	}
	return out
}

// mapGoogleItems converts Custom Search items to domain search results.
// Description comes from the page's og:description or description meta tag.
func mapGoogleItems(items []customSearchItem) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}

		out = append(out, domain.SearchResult{
			Title:       strings.TrimSpace(item.Title),
			Snippet:     collapseSpaces(item.Snippet),
			Description: collapseSpaces(metaDescription(item.Pagemap.Metatags)),
			URL:         item.Link,
		})
	}
	return out
}

func metaDescription(tags []map[string]string) string {
	for _, key := range []string{"og:description", "description", "twitter:description"} {
		for _, tag := range tags {
			if v := strings.TrimSpace(tag[key]); v != "" {
				return v
			}
		}
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
