package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"webscout/internal/model"
)

func init() {
	color.NoColor = true
}

type stubSearcher struct{ queries []string }

func (s *stubSearcher) Search(_ context.Context, q string) []model.SearchResult {
	s.queries = append(s.queries, q)
	return []model.SearchResult{{Title: "Go", URL: "https://go.dev/", Snippet: "The Go language"}}
}

type stubFetcher struct{ urls []string }

func (f *stubFetcher) Fetch(_ context.Context, u string) model.FetchResult {
	f.urls = append(f.urls, u)
	return model.FetchOK(&model.WebContent{
		Content:  strings.Repeat("x", 600),
		Metadata: &model.Metadata{Title: "Page", URL: u},
	})
}

func TestRenderSearch(t *testing.T) {
	var buf bytes.Buffer
	renderSearch(&buf, "go", []model.SearchResult{{Title: "Go", URL: "https://go.dev/", Snippet: "snip"}})

	want := "Found 1 results for \"go\"\n\n1. Go\n   https://go.dev/\n   snip\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}

	buf.Reset()
	renderSearch(&buf, "zzz", nil)
	if buf.String() != "No results found for \"zzz\".\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}

func TestRenderFetchPreview(t *testing.T) {
	var buf bytes.Buffer
	renderFetch(&buf, model.FetchOK(&model.WebContent{
		Content:  strings.Repeat("y", 700),
		Metadata: &model.Metadata{Title: "T", URL: "https://example.com"},
	}))

	out := buf.String()
	if !strings.Contains(out, "Title: T\nURL: https://example.com\n") {
		t.Fatalf("missing metadata: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("y", 500)+"...") || strings.Contains(out, strings.Repeat("y", 501)) {
		t.Fatalf("preview not cut at 500 characters: %q", out)
	}
	if !strings.Contains(out, "(700 characters total)") {
		t.Fatalf("missing total: %q", out)
	}
}

func TestRenderFetchError(t *testing.T) {
	var buf bytes.Buffer
	renderFetch(&buf, model.FetchFailed("Invalid URL format"))
	if buf.String() != "Error: Invalid URL format\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 500); got != "short" {
		t.Fatalf("preview changed short text: %q", got)
	}
	if got := preview("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestRunInteractive(t *testing.T) {
	s := &stubSearcher{}
	f := &stubFetcher{}
	in := strings.NewReader("help\nsearch golang tips\nfetch https://example.com\nsearch\nbogus\nexit\nsearch never\n")
	var out bytes.Buffer

	if err := runInteractive(context.Background(), in, &out, s, f); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}

	if len(s.queries) != 1 || s.queries[0] != "golang tips" {
		t.Fatalf("unexpected searches: %v", s.queries)
	}
	if len(f.urls) != 1 || f.urls[0] != "https://example.com" {
		t.Fatalf("unexpected fetches: %v", f.urls)
	}
	text := out.String()
	for _, want := range []string{"Usage: search <query>", `Unknown command "bogus"`, "Goodbye!", "1. Go"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunInteractiveEOF(t *testing.T) {
	var out bytes.Buffer
	if err := runInteractive(context.Background(), strings.NewReader(""), &out, &stubSearcher{}, &stubFetcher{}); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}
}
