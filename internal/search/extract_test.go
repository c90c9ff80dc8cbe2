package search

import "testing"

func TestNormalizeURL(t *testing.T) {
	origin := "https://www.google.com"
	cases := map[string]string{
		"//example.com/a":         "https://example.com/a",
		"/url?q=x":                "https://www.google.com/url?q=x",
		"http://example.com":      "https://example.com",
		"https://example.com/b":   "https://example.com/b",
		"  https://example.com  ": "https://example.com",
	}
	for in, want := range cases {
		if got := normalizeURL(in, origin); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsResultURL(t *testing.T) {
	origin := "https://www.google.com"
	cases := map[string]bool{
		"https://example.com/page":             true,
		"https://maps.google.com/place":        true,
		"https://www.google.com/url?q=x":       false,
		"https://google.com/search?q=go":       false,
		"https://www.google.com/aclk?sa=l":     false,
		"javascript:void(0)":                   false,
		"mailto:someone@example.com":           false,
		"https://":                             false,
		"https://www.google.com/intl/en/about": true,
	}
	for in, want := range cases {
		if got := isResultURL(in, origin); got != want {
			t.Errorf("isResultURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractResultsFallsBackToGenericSelectors(t *testing.T) {
	page := `<html><body><div id="rso">
<div><a href="https://example.com/one"><span role="heading">One</span></a><div class="st">first</div></div>
<div><a href="https://example.com/two">Two</a></div>
</div></body></html>`

	got := extractResults(page, "https://www.google.com")
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d: %#v", len(got), got)
	}
	if got[0].Title != "One" || got[0].Snippet != "first" {
		t.Fatalf("unexpected first result: %#v", got[0])
	}
	if got[1].Title != "Two" || got[1].URL != "https://example.com/two" {
		t.Fatalf("unexpected second result: %#v", got[1])
	}
}

func TestExtractResultsSkipsSelectorWithOnlyInvalidEntries(t *testing.T) {
	page := `<html><body>
<div class="g"><a href="/search?q=related"><h3>Related searches</h3></a></div>
<div data-hveid="1"><a href="https://example.com/"><h3>Example</h3></a></div>
</body></html>`

	got := extractResults(page, "https://www.google.com")
	if len(got) != 1 || got[0].URL != "https://example.com/" {
		t.Fatalf("unexpected results: %#v", got)
	}
}

func TestExtractResultsIcon(t *testing.T) {
	page := `<div class="g">
<a href="https://example.com/"><h3>Example</h3></a>
<img src="/relative.png"><img class="XNo5Ab" src="data:image/png;base64,AAAA">
</div>`

	got := extractResults(page, "https://www.google.com")
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Icon != "data:image/png;base64,AAAA" {
		t.Fatalf("unexpected icon: %q", got[0].Icon)
	}
}

func TestExtractResultsNoMatches(t *testing.T) {
	if got := extractResults("<html><body><p>nothing</p></body></html>", "https://www.google.com"); len(got) != 0 {
		t.Fatalf("expected no results, got %#v", got)
	}
}
