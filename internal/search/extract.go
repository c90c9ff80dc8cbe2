package search

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webscout/internal/model"
)

// extractResults walks the result selector cascade over a rendered results
// page. The first selector yielding at least one valid result wins; results
// from different selectors are never merged.
func extractResults(htmlStr, origin string) []model.SearchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	candidates := make([]string, 0, len(resultSelectors)+len(genericResultSelectors))
	candidates = append(candidates, resultSelectors...)
	candidates = append(candidates, genericResultSelectors...)

	for _, sel := range candidates {
		blocks := doc.Find(sel)
		if blocks.Length() == 0 {
			continue
		}

		results := make([]model.SearchResult, 0, blocks.Length())
		seen := make(map[string]struct{})
		blocks.Each(func(_ int, block *goquery.Selection) {
			r, ok := extractOne(block, origin)
			if !ok {
				return
			}
			if _, dup := seen[r.URL]; dup {
				return
			}
			seen[r.URL] = struct{}{}
			results = append(results, r)
		})

		if len(results) > 0 {
			return results
		}
	}
	return nil
}

func extractOne(block *goquery.Selection, origin string) (model.SearchResult, bool) {
	link := firstMatch(block, titleLinkSelectors, func(s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		return ok && strings.TrimSpace(href) != ""
	})
	if link == nil {
		return model.SearchResult{}, false
	}

	href := normalizeURL(link.AttrOr("href", ""), origin)
	if !isResultURL(href, origin) {
		return model.SearchResult{}, false
	}

	title := firstText(link, titleTextSelectors)
	if title == "" {
		title = firstText(block, titleTextSelectors)
	}
	if title == "" {
		title = strings.Join(strings.Fields(link.Text()), " ")
	}
	if title == "" {
		return model.SearchResult{}, false
	}

	r := model.SearchResult{
		Title:   title,
		URL:     href,
		Snippet: firstText(block, snippetSelectors),
	}

	if img := firstMatch(block, iconSelectors, func(s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		return strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:image")
	}); img != nil {
		r.Icon = img.AttrOr("src", "")
	}

	return r, true
}

// firstMatch returns the first element, over the selectors in order, that
// satisfies accept.
func firstMatch(scope *goquery.Selection, selectors []string, accept func(*goquery.Selection) bool) *goquery.Selection {
	for _, sel := range selectors {
		var found *goquery.Selection
		scope.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if accept(s) {
				found = s
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

func firstText(scope *goquery.Selection, selectors []string) string {
	s := firstMatch(scope, selectors, func(s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) != ""
	})
	if s == nil {
		return ""
	}
	return strings.Join(strings.Fields(s.Text()), " ")
}

// normalizeURL upgrades protocol-relative, root-relative and plain-http hrefs
// to absolute https URLs.
func normalizeURL(href, origin string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(origin, "/") + href
	case strings.HasPrefix(href, "http://"):
		return "https://" + strings.TrimPrefix(href, "http://")
	default:
		return href
	}
}

// isResultURL rejects pseudo-schemes, non-http URLs and links back into the
// engine's own redirect and tracking endpoints.
func isResultURL(href, origin string) bool {
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || !strings.HasPrefix(lower, "http") {
		return false
	}

	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}

	if engine, err := url.Parse(origin); err == nil && sameSite(u.Hostname(), engine.Hostname()) {
		for _, prefix := range internalPathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				return false
			}
		}
	}
	return true
}

func sameSite(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a != "" && a == b
}
