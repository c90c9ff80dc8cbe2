package mcpserver

import (
	"fmt"
	"strings"

	"webscout/internal/model"
)

// TruncationNotice is appended to fetched content cut at the size limit.
const TruncationNotice = "\n\n[Content truncated due to length...]"

// formatResults renders results as a numbered Markdown list.
func formatResults(query string, results []model.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. **%s**\n   URL: %s", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			b.WriteString("\n   ")
			b.WriteString(r.Snippet)
		}
	}
	return b.String()
}

// truncate cuts s to at most limit characters and appends the notice when
// anything was removed.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + TruncationNotice
		}
		n++
	}
	return s
}
