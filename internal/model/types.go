package model

import "time"

// SearchResult is a single organic hit extracted from a search results page.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Icon    string `json:"icon,omitempty"`
}

// Metadata is the subset of <head> information kept alongside extracted content.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`
}

// WebContent is the Markdown rendering of a page plus optional metadata.
type WebContent struct {
	Content  string    `json:"content"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// FetchResult is the error-as-value envelope returned by the fetch path.
// Data is set iff Success; Error is set iff !Success.
type FetchResult struct {
	Success bool        `json:"success"`
	Data    *WebContent `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FetchOK builds a successful FetchResult.
func FetchOK(data *WebContent) FetchResult {
	return FetchResult{Success: true, Data: data}
}

// FetchFailed builds a failed FetchResult.
func FetchFailed(msg string) FetchResult {
	return FetchResult{Success: false, Error: msg}
}

// RateLimitStatus is a read-only snapshot of a rate limiter.
type RateLimitStatus struct {
	Requests int           `json:"requests"`
	Limit    int           `json:"limit"`
	Interval time.Duration `json:"interval"`
}
