// Package scraper turns raw HTML into Markdown plus page metadata.
package scraper

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"webscout/internal/httpclient"
	"webscout/internal/model"
)

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Scrape converts html into a WebContent. pageURL is used as the metadata URL
// when present and to resolve relative links. It never fails: malformed input
// is parsed best-effort and empty input yields empty content.
func Scrape(htmlStr, pageURL string, opts Options) *model.WebContent {
	if htmlStr == "" {
		return &model.WebContent{Content: ""}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return &model.WebContent{Content: ""}
	}

	removeBoilerplate(doc, opts.Selectors)

	var meta *model.Metadata
	if opts.IncludeMetadata {
		meta = extractMetadata(doc, pageURL)
	}

	root := contentRoot(doc, pageURL, opts)

	if !opts.IncludeLinks {
		stripLinks(root)
	}

	body := toMarkdown(root, pageURL)
	if opts.CleanWhitespace {
		body = cleanWhitespace(body)
	}

	content := body
	if meta != nil {
		if header := metadataHeader(meta); header != "" {
			if body != "" {
				content = header + "\n\n" + body
			} else {
				content = header
			}
		}
	}

	return &model.WebContent{Content: content, Metadata: meta}
}

// FetchAndScrape downloads pageURL with client and scrapes the result.
func FetchAndScrape(ctx context.Context, client httpclient.Getter, pageURL string, opts Options) (*model.WebContent, error) {
	body, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	return Scrape(body, pageURL, opts), nil
}

// removeBoilerplate drops denylisted elements. The document root, <body> and
// anything holding a content root are kept even when a pattern matches them,
// since layout classes such as "has-sidebar" sit on those wrappers.
func removeBoilerplate(doc *goquery.Document, sel Selectors) {
	protected := strings.Join(contentRootSelectors, ", ")
	if focus := strings.TrimSpace(sel.Focus); focus != "" {
		protected += ", " + focus
	}

	remove := func(selector string) {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if s.Is("html, body") || s.Is(protected) || s.Find(protected).Length() > 0 {
				return
			}
			s.Remove()
		})
	}

	for _, selector := range removeSelectors {
		remove(selector)
	}
	for _, selector := range sel.Remove {
		if selector = strings.TrimSpace(selector); selector != "" {
			remove(selector)
		}
	}
}

func contentRoot(doc *goquery.Document, pageURL string, opts Options) *goquery.Selection {
	if focus := strings.TrimSpace(opts.Selectors.Focus); focus != "" {
		return doc.Find(focus).First()
	}

	if opts.UseReadability {
		if root := readabilityRoot(doc, pageURL); root != nil {
			return root
		}
	}

	for _, sel := range contentRootSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return doc.Find("body").First()
}

func readabilityRoot(doc *goquery.Document, pageURL string) *goquery.Selection {
	cleaned, err := doc.Html()
	if err != nil {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base = &url.URL{Scheme: "http", Host: "localhost"}
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), base)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return nil
	}

	articleDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil
	}
	return articleDoc.Find("body").First()
}

func stripLinks(root *goquery.Selection) {
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		a.ReplaceWithHtml(html.EscapeString(a.Text()))
	})
}

func toMarkdown(root *goquery.Selection, pageURL string) string {
	if root == nil || root.Length() == 0 {
		return ""
	}

	inner, err := root.Html()
	if err != nil {
		return strings.TrimSpace(root.Text())
	}

	domain := ""
	if u, err := url.Parse(pageURL); err == nil {
		domain = u.Hostname()
	}

	converter := htmlmd.NewConverter(domain, true, &htmlmd.Options{
		HeadingStyle:   "atx",
		CodeBlockStyle: "fenced",
	})
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(inner)
	if err != nil {
		return strings.TrimSpace(root.Text())
	}
	return markdown
}

func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n\n")
	return multiNewline.ReplaceAllString(out, "\n\n")
}

func metadataHeader(meta *model.Metadata) string {
	parts := make([]string, 0, 5)
	if meta.Title != "" {
		parts = append(parts, "# "+meta.Title)
	}
	if meta.URL != "" {
		parts = append(parts, "Source: "+meta.URL)
	}
	if meta.Author != "" {
		parts = append(parts, "Author: "+meta.Author)
	}
	if meta.PublishDate != "" {
		parts = append(parts, "Published: "+meta.PublishDate)
	}
	if meta.Description != "" {
		parts = append(parts, meta.Description+"\n\n---")
	}
	return strings.Join(parts, "\n\n")
}
