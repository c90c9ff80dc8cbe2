package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"webscout/internal/model"
)

const previewChars = 500

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	urlColor   = color.New(color.FgGreen)
	dimColor   = color.New(color.FgHiBlack)
	errColor   = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen, color.Bold)
)

func renderSearch(w io.Writer, query string, results []model.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results found for %q.\n", query)
		return
	}

	okColor.Fprintf(w, "Found %d results for %q\n\n", len(results), query)
	for i, r := range results {
		titleColor.Fprintf(w, "%d. %s\n", i+1, r.Title)
		urlColor.Fprintf(w, "   %s\n", r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(w, "   %s\n", r.Snippet)
		}
		fmt.Fprintln(w)
	}
}

func renderFetch(w io.Writer, res model.FetchResult) {
	if !res.Success {
		errColor.Fprintf(w, "Error: %s\n", res.Error)
		return
	}
	if res.Data == nil {
		return
	}

	if m := res.Data.Metadata; m != nil {
		if m.Title != "" {
			titleColor.Fprintf(w, "Title: %s\n", m.Title)
		}
		if m.URL != "" {
			urlColor.Fprintf(w, "URL: %s\n", m.URL)
		}
		if m.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", m.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Content preview:")
	fmt.Fprintln(w, preview(res.Data.Content, previewChars))
	dimColor.Fprintf(w, "\n(%d characters total)\n", utf8.RuneCountInString(res.Data.Content))
}

// preview returns the first n characters of s, marked when cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " \n") + "..."
}

const interactiveHelp = `Commands:
  search <query>   search the web
  fetch <url>      fetch a page and show a preview
  help             show this help
  exit, quit       leave interactive mode`
