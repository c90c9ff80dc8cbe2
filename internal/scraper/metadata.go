package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webscout/internal/model"
)

// extractMetadata reads <head> information with a fixed precedence: plain
// tags first, Open Graph / article tags as fallback, and the caller's URL
// ahead of og:url.
func extractMetadata(doc *goquery.Document, pageURL string) *model.Metadata {
	return &model.Metadata{
		Title: firstNonEmpty(
			strings.TrimSpace(doc.Find("title").First().Text()),
			metaContent(doc, `meta[property="og:title"]`),
		),
		Description: firstNonEmpty(
			metaContent(doc, `meta[name="description"]`),
			metaContent(doc, `meta[property="og:description"]`),
		),
		URL: firstNonEmpty(
			strings.TrimSpace(pageURL),
			metaContent(doc, `meta[property="og:url"]`),
		),
		Author: firstNonEmpty(
			metaContent(doc, `meta[name="author"]`),
			metaContent(doc, `meta[property="article:author"]`),
		),
		PublishDate: firstNonEmpty(
			metaContent(doc, `meta[property="article:published_time"]`),
			strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", "")),
		),
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
